package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Cart errors
	CodeCartItemInvalid   Code = "CART_ITEM_INVALID"
	CodeCartStorageFailed Code = "CART_STORAGE_FAILED"

	// API transport errors
	CodeAPIRequestFailed Code = "API_REQUEST_FAILED"
	CodeAPIRejected      Code = "API_REJECTED"
	CodeAPIUnauthorized  Code = "API_UNAUTHORIZED"

	// Auth errors
	CodeAuthLoginFailed    Code = "AUTH_LOGIN_FAILED"
	CodeAuthSessionExpired Code = "AUTH_SESSION_EXPIRED"

	// Panel resource errors
	CodeProductsUnavailable  Code = "PRODUCTS_UNAVAILABLE"
	CodeProductNotFound      Code = "PRODUCT_NOT_FOUND"
	CodeFavoritesUnavailable Code = "FAVORITES_UNAVAILABLE"
	CodeOrdersUnavailable    Code = "ORDERS_UNAVAILABLE"
	CodeOrderCreateFailed    Code = "ORDER_CREATE_FAILED"
	CodeContactUnavailable   Code = "CONTACT_UNAVAILABLE"
	CodeExtractUnavailable   Code = "EXTRACT_UNAVAILABLE"

	// Configuration errors
	CodeConfigInvalid Code = "CONFIG_INVALID"
)
