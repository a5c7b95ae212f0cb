package i18n

// Codes must match internal/platform/errors/codes.go. They are plain
// strings here to avoid an import cycle with the errors package.

var trTR = map[Code]string{
	"UNKNOWN":               "Bir hata oluştu",
	"CART_ITEM_INVALID":     "Sepet satırı geçersiz",
	"CART_STORAGE_FAILED":   "Sepet yerel olarak kaydedilemedi",
	"API_REQUEST_FAILED":    "Sunucuya ulaşılamadı",
	"API_REJECTED":          "{{.message}}",
	"API_UNAUTHORIZED":      "Oturumunuz sonlandı, lütfen tekrar giriş yapın",
	"AUTH_LOGIN_FAILED":     "Giriş yapılamadı",
	"AUTH_SESSION_EXPIRED":  "Oturum süresi doldu",
	"PRODUCTS_UNAVAILABLE":  "Ürünler getirilemedi",
	"PRODUCT_NOT_FOUND":     "Ürün bulunamadı",
	"FAVORITES_UNAVAILABLE": "Favori ürünler getirilemedi",
	"ORDERS_UNAVAILABLE":    "Siparişler getirilemedi",
	"ORDER_CREATE_FAILED":   "Sipariş oluşturulamadı",
	"CONTACT_UNAVAILABLE":   "Temsilci bilgileri getirilemedi",
	"EXTRACT_UNAVAILABLE":   "Ekstre getirilemedi",
	"CONFIG_INVALID":        "Yapılandırma geçersiz",
}

var enUS = map[Code]string{
	"UNKNOWN":               "Something went wrong",
	"CART_ITEM_INVALID":     "Cart line is invalid",
	"CART_STORAGE_FAILED":   "Cart could not be saved locally",
	"API_REQUEST_FAILED":    "The server could not be reached",
	"API_REJECTED":          "{{.message}}",
	"API_UNAUTHORIZED":      "Your session has ended, please sign in again",
	"AUTH_LOGIN_FAILED":     "Sign in failed",
	"AUTH_SESSION_EXPIRED":  "Session has expired",
	"PRODUCTS_UNAVAILABLE":  "Products could not be loaded",
	"PRODUCT_NOT_FOUND":     "Product not found",
	"FAVORITES_UNAVAILABLE": "Favorite products could not be loaded",
	"ORDERS_UNAVAILABLE":    "Orders could not be loaded",
	"ORDER_CREATE_FAILED":   "Order could not be created",
	"CONTACT_UNAVAILABLE":   "Representative details could not be loaded",
	"EXTRACT_UNAVAILABLE":   "Account statement could not be loaded",
	"CONFIG_INVALID":        "Configuration is invalid",
}
