package common

// SessionTokenHeaderName is the gRPC metadata key used to carry the session
// token on outbound requests after a successful authentication.
const SessionTokenHeaderName = "session_token"
