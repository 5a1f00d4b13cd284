package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token.
const AuthorizationHeaderName = "Authorization"

// DateLayout is the storage layout of calendar dates (startDate/endDate).
const DateLayout = "2006-01-02"
