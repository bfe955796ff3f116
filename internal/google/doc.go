// Package google provides OAuth2 authentication and token management for Google APIs.
//
// Tokens are stored per account in the user cache directory as
// google-<account>.token files. Client credentials come from the
// GOOGLE_OAUTH_CLIENT_ID and GOOGLE_OAUTH_CLIENT_SECRET environment
// variables.
package google
