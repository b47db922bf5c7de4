// Package fetcher retrieves the raw bytes of a resource so it can be
// hashed. Plain http(s) URLs are fetched with a single CORS-mode GET;
// github:// and gitlab:// URLs read repository files through the
// hosting platform's API. Every failure is reported as a *FetchError
// and is never retried.
package fetcher
