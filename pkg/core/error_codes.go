package core

import "errors"

// Well-known numeric error codes returned by the exchange in structured error
// bodies. The full set is much larger; these are the ones callers commonly
// need to branch on.
const (
	// CodeUnknown indicates an unknown server-side error.
	CodeUnknown = -1000
	// CodeDisconnected indicates an internal connectivity problem on the
	// exchange side.
	CodeDisconnected = -1001
	// CodeUnauthorized indicates the request was not authorized to hit the
	// endpoint.
	CodeUnauthorized = -1002
	// CodeTooManyRequests indicates the request rate limit was exceeded.
	CodeTooManyRequests = -1003
	// CodeTimeout indicates a server-side timeout while processing.
	CodeTimeout = -1007
	// CodeServiceShuttingDown indicates the service is going down and the
	// request was dropped.
	CodeServiceShuttingDown = -1016
	// CodeInvalidTimestamp indicates the request timestamp was outside the
	// recvWindow, usually a local clock drift problem.
	CodeInvalidTimestamp = -1021
	// CodeInvalidSignature indicates the request signature did not verify.
	CodeInvalidSignature = -1022
	// CodeIllegalChars indicates a parameter contained illegal characters.
	CodeIllegalChars = -1100
	// CodeMandatoryParamMissing indicates a mandatory parameter was missing
	// or empty.
	CodeMandatoryParamMissing = -1102
	// CodeUnknownParam indicates an unexpected parameter was sent.
	CodeUnknownParam = -1103
	// CodeInvalidInterval indicates an unsupported kline interval.
	CodeInvalidInterval = -1120
	// CodeInvalidSymbol indicates the trading pair is not recognized.
	CodeInvalidSymbol = -1121
	// CodeInvalidListenKey indicates the user stream listen key does not
	// exist or has expired.
	CodeInvalidListenKey = -1125
	// CodeNewOrderRejected indicates the new order was rejected by the
	// matching engine.
	CodeNewOrderRejected = -2010
	// CodeCancelRejected indicates the cancel request was rejected.
	CodeCancelRejected = -2011
	// CodeNoSuchOrder indicates the referenced order does not exist.
	CodeNoSuchOrder = -2013
	// CodeBadAPIKeyFormat indicates the API key has an invalid format.
	CodeBadAPIKeyFormat = -2014
	// CodeRejectedAPIKey indicates the API key was rejected outright.
	CodeRejectedAPIKey = -2015
)

// IsServerCode checks whether the error is a server rejection carrying the
// given numeric code.
func IsServerCode(err error, code int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind == ErrKindServerRejected && apiErr.Code == code
	}
	return false
}

// IsTimestampOutOfWindow returns true if the server rejected the request
// timestamp. Re-syncing the clock and retrying usually fixes this.
func IsTimestampOutOfWindow(err error) bool {
	return IsServerCode(err, CodeInvalidTimestamp)
}

// IsSignatureInvalid returns true if the server rejected the request
// signature. This almost always means a wrong secret key.
func IsSignatureInvalid(err error) bool {
	return IsServerCode(err, CodeInvalidSignature)
}

// IsRateLimited returns true if the request was throttled, either via the
// dedicated error code or the 429/418 HTTP statuses.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == CodeTooManyRequests ||
			apiErr.HTTPStatus == 429 || apiErr.HTTPStatus == 418
	}
	return false
}

// IsUnknownOrder returns true if the referenced order does not exist on the
// exchange.
func IsUnknownOrder(err error) bool {
	return IsServerCode(err, CodeNoSuchOrder)
}
