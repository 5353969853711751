package commerce

import (
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/vmcandles/commerce-api/internal/config"
	"github.com/vmcandles/commerce-api/internal/lib/jwt"
	"github.com/vmcandles/commerce-api/internal/services"

	addresscreate "github.com/vmcandles/commerce-api/internal/http/handlers/address/create"
	addresslist "github.com/vmcandles/commerce-api/internal/http/handlers/address/list"
	addressremove "github.com/vmcandles/commerce-api/internal/http/handlers/address/remove"
	addressupdate "github.com/vmcandles/commerce-api/internal/http/handlers/address/update"
	analyticscustomers "github.com/vmcandles/commerce-api/internal/http/handlers/analytics/customers"
	analyticsdashboard "github.com/vmcandles/commerce-api/internal/http/handlers/analytics/dashboard"
	analyticsinventory "github.com/vmcandles/commerce-api/internal/http/handlers/analytics/inventory"
	analyticslowstock "github.com/vmcandles/commerce-api/internal/http/handlers/analytics/lowstock"
	analyticssubs "github.com/vmcandles/commerce-api/internal/http/handlers/analytics/subscriptions"
	analyticsupdatestock "github.com/vmcandles/commerce-api/internal/http/handlers/analytics/updatestock"
	audiocreate "github.com/vmcandles/commerce-api/internal/http/handlers/audio/create"
	audiogeneratekeys "github.com/vmcandles/commerce-api/internal/http/handlers/audio/generatekeys"
	audiolibrary "github.com/vmcandles/commerce-api/internal/http/handlers/audio/library"
	audiolist "github.com/vmcandles/commerce-api/internal/http/handlers/audio/list"
	audiolistkeys "github.com/vmcandles/commerce-api/internal/http/handlers/audio/listkeys"
	audioread "github.com/vmcandles/commerce-api/internal/http/handlers/audio/read"
	audioredeem "github.com/vmcandles/commerce-api/internal/http/handlers/audio/redeem"
	audioremove "github.com/vmcandles/commerce-api/internal/http/handlers/audio/remove"
	audiostream "github.com/vmcandles/commerce-api/internal/http/handlers/audio/stream"
	audioupdate "github.com/vmcandles/commerce-api/internal/http/handlers/audio/update"
	authlogin "github.com/vmcandles/commerce-api/internal/http/handlers/auth/login"
	authlogout "github.com/vmcandles/commerce-api/internal/http/handlers/auth/logout"
	authme "github.com/vmcandles/commerce-api/internal/http/handlers/auth/me"
	authregister "github.com/vmcandles/commerce-api/internal/http/handlers/auth/register"
	cartadditem "github.com/vmcandles/commerce-api/internal/http/handlers/cart/additem"
	cartclear "github.com/vmcandles/commerce-api/internal/http/handlers/cart/clear"
	cartread "github.com/vmcandles/commerce-api/internal/http/handlers/cart/read"
	cartremoveitem "github.com/vmcandles/commerce-api/internal/http/handlers/cart/removeitem"
	cartupdateitem "github.com/vmcandles/commerce-api/internal/http/handlers/cart/updateitem"
	invoicebyorder "github.com/vmcandles/commerce-api/internal/http/handlers/invoice/byorder"
	invoicegenerate "github.com/vmcandles/commerce-api/internal/http/handlers/invoice/generate"
	invoicelist "github.com/vmcandles/commerce-api/internal/http/handlers/invoice/list"
	invoicepdfdl "github.com/vmcandles/commerce-api/internal/http/handlers/invoice/pdf"
	invoiceread "github.com/vmcandles/commerce-api/internal/http/handlers/invoice/read"
	orderadminlist "github.com/vmcandles/commerce-api/internal/http/handlers/order/adminlist"
	ordercancel "github.com/vmcandles/commerce-api/internal/http/handlers/order/cancel"
	ordercheckout "github.com/vmcandles/commerce-api/internal/http/handlers/order/checkout"
	orderlist "github.com/vmcandles/commerce-api/internal/http/handlers/order/list"
	orderread "github.com/vmcandles/commerce-api/internal/http/handlers/order/read"
	orderstatusupd "github.com/vmcandles/commerce-api/internal/http/handlers/order/status"
	ordertracking "github.com/vmcandles/commerce-api/internal/http/handlers/order/tracking"
	paymentinitorder "github.com/vmcandles/commerce-api/internal/http/handlers/payment/initorder"
	paymentorderstatus "github.com/vmcandles/commerce-api/internal/http/handlers/payment/orderstatus"
	paymentwebpayreturn "github.com/vmcandles/commerce-api/internal/http/handlers/payment/webpayreturn"
	productcreate "github.com/vmcandles/commerce-api/internal/http/handlers/product/create"
	productlist "github.com/vmcandles/commerce-api/internal/http/handlers/product/list"
	productread "github.com/vmcandles/commerce-api/internal/http/handlers/product/read"
	productremove "github.com/vmcandles/commerce-api/internal/http/handlers/product/remove"
	productsetaudio "github.com/vmcandles/commerce-api/internal/http/handlers/product/setaudio"
	producttranslate "github.com/vmcandles/commerce-api/internal/http/handlers/product/translate"
	producttranslations "github.com/vmcandles/commerce-api/internal/http/handlers/product/translations"
	productupdate "github.com/vmcandles/commerce-api/internal/http/handlers/product/update"
	profileread "github.com/vmcandles/commerce-api/internal/http/handlers/profile/read"
	profileupdate "github.com/vmcandles/commerce-api/internal/http/handlers/profile/update"
	reviewbyproduct "github.com/vmcandles/commerce-api/internal/http/handlers/review/byproduct"
	reviewcreate "github.com/vmcandles/commerce-api/internal/http/handlers/review/create"
	reviewmine "github.com/vmcandles/commerce-api/internal/http/handlers/review/mine"
	reviewremove "github.com/vmcandles/commerce-api/internal/http/handlers/review/remove"
	reviewupdate "github.com/vmcandles/commerce-api/internal/http/handlers/review/update"
	subadminlist "github.com/vmcandles/commerce-api/internal/http/handlers/subscription/adminlist"
	subcancel "github.com/vmcandles/commerce-api/internal/http/handlers/subscription/cancel"
	subcreate "github.com/vmcandles/commerce-api/internal/http/handlers/subscription/create"
	subcurrent "github.com/vmcandles/commerce-api/internal/http/handlers/subscription/current"
	subinitpayment "github.com/vmcandles/commerce-api/internal/http/handlers/subscription/initpayment"
	subinitupgrade "github.com/vmcandles/commerce-api/internal/http/handlers/subscription/initupgrade"
	subpause "github.com/vmcandles/commerce-api/internal/http/handlers/subscription/pause"
	subplans "github.com/vmcandles/commerce-api/internal/http/handlers/subscription/plans"
	subread "github.com/vmcandles/commerce-api/internal/http/handlers/subscription/read"
	subresume "github.com/vmcandles/commerce-api/internal/http/handlers/subscription/resume"
	subupdate "github.com/vmcandles/commerce-api/internal/http/handlers/subscription/update"
	subupgrade "github.com/vmcandles/commerce-api/internal/http/handlers/subscription/upgrade"
	uploadproductimage "github.com/vmcandles/commerce-api/internal/http/handlers/upload/productimage"
	usercreate "github.com/vmcandles/commerce-api/internal/http/handlers/user/create"
	userlist "github.com/vmcandles/commerce-api/internal/http/handlers/user/list"
	userread "github.com/vmcandles/commerce-api/internal/http/handlers/user/read"
	userremove "github.com/vmcandles/commerce-api/internal/http/handlers/user/remove"
	userupdate "github.com/vmcandles/commerce-api/internal/http/handlers/user/update"
	wishlistadd "github.com/vmcandles/commerce-api/internal/http/handlers/wishlist/add"
	wishlistcontains "github.com/vmcandles/commerce-api/internal/http/handlers/wishlist/contains"
	wishlistlist "github.com/vmcandles/commerce-api/internal/http/handlers/wishlist/list"
	wishlistremove "github.com/vmcandles/commerce-api/internal/http/handlers/wishlist/remove"
	"github.com/vmcandles/commerce-api/internal/http/middlewarectx"
)

// Services bundles the wired service layer for route registration.
type Services struct {
	Auth          *services.AuthService
	Users         *services.UserService
	Profiles      *services.ProfileService
	Catalog       *services.CatalogService
	Carts         *services.CartService
	Orders        *services.OrderService
	Payments      *services.PaymentService
	Subscriptions *services.SubscriptionService
	Invoices      *services.InvoiceService
	Audio         *services.AudioService
	Reviews       *services.ReviewService
	Wishlists     *services.WishlistService
	Analytics     *services.AnalyticsService
}

// RegisterRoutes mounts every endpoint of the storefront API.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, jwtMaker jwt.Maker, svc Services) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		// Public storefront endpoints.
		r.Post("/auth/register", authregister.New(logger, svc.Auth).ServeHTTP)
		r.Post("/auth/login", authlogin.New(logger, svc.Auth).ServeHTTP)
		r.Post("/auth/logout", authlogout.New().ServeHTTP)

		r.Get("/products", productlist.New(logger, svc.Catalog).ServeHTTP)
		r.Get("/products/{id}", productread.New(logger, svc.Catalog).ServeHTTP)
		r.Get("/products/{id}/reviews", reviewbyproduct.New(logger, svc.Reviews).ServeHTTP)

		r.Get("/audio", audiolist.New(logger, svc.Audio).ServeHTTP)
		r.Get("/audio/{id}", audioread.New(logger, svc.Audio).ServeHTTP)

		r.Get("/subscriptions/plans", subplans.New(svc.Subscriptions).ServeHTTP)

		// Webpay lands the shopper here after the payment form. No
		// auth: the payment context is resolved from the token.
		webpayReturn := paymentwebpayreturn.New(logger, svc.Payments)
		r.Post("/payments/webpay/return", webpayReturn.ServeHTTP)
		r.Get("/payments/webpay/return", webpayReturn.ServeHTTP)

		// Previews stream anonymously, full tracks need a plan.
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.OptionalAuth(jwtMaker))
			r.Get("/audio/{id}/stream", audiostream.New(logger, svc.Audio).ServeHTTP)
		})

		// Authenticated customer endpoints.
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, rate.Limit(10), 20))

			r.Get("/auth/me", authme.New(logger, svc.Auth).ServeHTTP)

			r.Get("/profile", profileread.New(logger, svc.Profiles).ServeHTTP)
			r.Put("/profile", profileupdate.New(logger, svc.Profiles).ServeHTTP)
			r.Get("/profile/addresses", addresslist.New(logger, svc.Profiles).ServeHTTP)
			r.Post("/profile/addresses", addresscreate.New(logger, svc.Profiles).ServeHTTP)
			r.Put("/profile/addresses/{id}", addressupdate.New(logger, svc.Profiles).ServeHTTP)
			r.Delete("/profile/addresses/{id}", addressremove.New(logger, svc.Profiles).ServeHTTP)

			r.Get("/cart", cartread.New(logger, svc.Carts).ServeHTTP)
			r.Post("/cart/items", cartadditem.New(logger, svc.Carts).ServeHTTP)
			r.Put("/cart/items/{id}", cartupdateitem.New(logger, svc.Carts).ServeHTTP)
			r.Delete("/cart/items/{id}", cartremoveitem.New(logger, svc.Carts).ServeHTTP)
			r.Delete("/cart", cartclear.New(logger, svc.Carts).ServeHTTP)

			r.Post("/orders/checkout", ordercheckout.New(logger, svc.Orders).ServeHTTP)
			r.Get("/orders", orderlist.New(logger, svc.Orders).ServeHTTP)
			r.Get("/orders/{id}", orderread.New(logger, svc.Orders).ServeHTTP)
			r.Post("/orders/{id}/cancel", ordercancel.New(logger, svc.Orders).ServeHTTP)

			r.Post("/payments/webpay/init", paymentinitorder.New(logger, svc.Payments).ServeHTTP)
			r.Get("/payments/order/{orderId}/status", paymentorderstatus.New(logger, svc.Payments).ServeHTTP)

			r.Post("/subscriptions", subcreate.New(logger, svc.Subscriptions).ServeHTTP)
			r.Get("/subscriptions/current", subcurrent.New(logger, svc.Subscriptions).ServeHTTP)
			r.Get("/subscriptions/{id}", subread.New(logger, svc.Subscriptions).ServeHTTP)
			r.Put("/subscriptions/{id}", subupdate.New(logger, svc.Subscriptions).ServeHTTP)
			r.Post("/subscriptions/{id}/upgrade", subupgrade.New(logger, svc.Subscriptions).ServeHTTP)
			r.Post("/subscriptions/{id}/upgrade/init", subinitupgrade.New(logger, svc.Subscriptions, svc.Payments).ServeHTTP)
			r.Post("/subscriptions/{id}/payment/init", subinitpayment.New(logger, svc.Payments).ServeHTTP)
			r.Post("/subscriptions/{id}/cancel", subcancel.New(logger, svc.Subscriptions).ServeHTTP)
			r.Post("/subscriptions/{id}/pause", subpause.New(logger, svc.Subscriptions).ServeHTTP)
			r.Post("/subscriptions/{id}/resume", subresume.New(logger, svc.Subscriptions).ServeHTTP)

			r.Post("/invoices", invoicegenerate.New(logger, svc.Invoices).ServeHTTP)
			r.Get("/invoices/{id}", invoiceread.New(logger, svc.Invoices).ServeHTTP)
			r.Get("/invoices/{id}/pdf", invoicepdfdl.New(logger, svc.Invoices).ServeHTTP)
			r.Get("/invoices/order/{orderId}", invoicebyorder.New(logger, svc.Invoices).ServeHTTP)

			r.Get("/audio/library", audiolibrary.New(logger, svc.Audio).ServeHTTP)
			r.Post("/audio/redeem", audioredeem.New(logger, svc.Audio).ServeHTTP)

			r.Post("/reviews", reviewcreate.New(logger, svc.Reviews).ServeHTTP)
			r.Get("/reviews/mine", reviewmine.New(logger, svc.Reviews).ServeHTTP)
			r.Put("/reviews/{id}", reviewupdate.New(logger, svc.Reviews).ServeHTTP)
			r.Delete("/reviews/{id}", reviewremove.New(logger, svc.Reviews).ServeHTTP)

			r.Get("/wishlist", wishlistlist.New(logger, svc.Wishlists).ServeHTTP)
			r.Post("/wishlist", wishlistadd.New(logger, svc.Wishlists).ServeHTTP)
			r.Get("/wishlist/{productId}", wishlistcontains.New(logger, svc.Wishlists).ServeHTTP)
			r.Delete("/wishlist/{productId}", wishlistremove.New(logger, svc.Wishlists).ServeHTTP)
		})

		// Admin endpoints.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RequireAdmin(logger))

			r.Get("/users", userlist.New(logger, svc.Users).ServeHTTP)
			r.Post("/users", usercreate.New(logger, svc.Users).ServeHTTP)
			r.Get("/users/{id}", userread.New(logger, svc.Users).ServeHTTP)
			r.Put("/users/{id}", userupdate.New(logger, svc.Users).ServeHTTP)
			r.Delete("/users/{id}", userremove.New(logger, svc.Users).ServeHTTP)

			r.Post("/products", productcreate.New(logger, svc.Catalog).ServeHTTP)
			r.Put("/products/{id}", productupdate.New(logger, svc.Catalog).ServeHTTP)
			r.Delete("/products/{id}", productremove.New(logger, svc.Catalog).ServeHTTP)
			r.Get("/products/{id}/translations", producttranslations.New(logger, svc.Catalog).ServeHTTP)
			r.Put("/products/{id}/translations", producttranslate.New(logger, svc.Catalog).ServeHTTP)
			r.Put("/products/{id}/audio", productsetaudio.New(logger, svc.Catalog).ServeHTTP)

			r.Post("/upload/product-image", uploadproductimage.New(logger, cfg.UploadDir).ServeHTTP)

			r.Get("/orders", orderadminlist.New(logger, svc.Orders).ServeHTTP)
			r.Put("/orders/{id}/status", orderstatusupd.New(logger, svc.Orders).ServeHTTP)
			r.Put("/orders/{id}/tracking", ordertracking.New(logger, svc.Orders).ServeHTTP)

			r.Get("/subscriptions", subadminlist.New(logger, svc.Subscriptions).ServeHTTP)
			r.Get("/invoices", invoicelist.New(logger, svc.Invoices).ServeHTTP)

			r.Post("/audio", audiocreate.New(logger, svc.Audio).ServeHTTP)
			r.Put("/audio/{id}", audioupdate.New(logger, svc.Audio).ServeHTTP)
			r.Delete("/audio/{id}", audioremove.New(logger, svc.Audio).ServeHTTP)
			r.Post("/audio/keys", audiogeneratekeys.New(logger, svc.Audio).ServeHTTP)
			r.Get("/audio/keys", audiolistkeys.New(logger, svc.Audio).ServeHTTP)

			r.Get("/analytics/dashboard", analyticsdashboard.New(logger, svc.Analytics).ServeHTTP)
			r.Get("/analytics/subscriptions", analyticssubs.New(logger, svc.Analytics).ServeHTTP)
			r.Get("/analytics/inventory", analyticsinventory.New(logger, svc.Analytics).ServeHTTP)
			r.Get("/analytics/inventory/low-stock", analyticslowstock.New(logger, svc.Analytics).ServeHTTP)
			r.Patch("/analytics/inventory/{id}", analyticsupdatestock.New(logger, svc.Analytics).ServeHTTP)
			r.Get("/analytics/customers", analyticscustomers.New(logger, svc.Analytics).ServeHTTP)
		})
	})

	// Uploaded assets are served straight from disk. Audio files live
	// under their own prefix so track URLs stay short.
	r.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(cfg.UploadDir))))
	r.Handle("/audio/*", http.StripPrefix("/audio/",
		http.FileServer(http.Dir(filepath.Join(cfg.UploadDir, "audio")))))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
