// Package newsclient pulls news articles from a day-windowed, paginated
// search API.
//
// Queries are assembled under a character budget: a broad core query of
// base terms, plus themed term groups each ANDed to a fixed left term and
// split across as many sub-queries as the budget requires. Fetching walks
// one calendar day at a time, spreading the day's page budget round-robin
// across sub-queries. HTTP 429 gets one delayed retry; any other upstream
// failure abandons the remainder of that day and the loop moves on.
package newsclient
