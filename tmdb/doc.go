// Package tmdb provides a client for the TMDb movie catalog API.
//
// The client covers the three catalog resources the rest of popcorn relies on:
// the popular movies list, movie search and the per-movie detail record. Every
// request carries the api_key query parameter and every response is mapped to
// either a typed value or one of the package's typed errors.
//
// # Usage
//
//	logger := zerolog.New(os.Stderr)
//	client, err := tmdb.NewClient(
//		"your-api-key",
//		logger,
//		tmdb.WithRequestTimeout(30*time.Second),
//		tmdb.WithResourceTimeout(60*time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	page, err := client.PopularMovies(ctx, 1)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Features
//
//   - Context-aware API calls
//   - Identical concurrent requests share one round trip
//   - Optional wait for connectivity when the host is offline
//   - Poster and backdrop URL resolution
//
// # Error Handling
//
// Failures are classified into a small taxonomy:
//
//   - ErrInvalidInput: malformed request parameters (empty query, page < 1)
//   - ErrUnauthorized: HTTP 401, bad or missing API key
//   - ErrRateLimited: HTTP 429
//   - APIError: any other 4xx/5xx status, carrying the code
//   - DecodeError: the body did not match the expected shape
//   - TransportError: DNS, timeout or connection failure
//
// None of them is retried automatically.
package tmdb
