// Package httpx exposes the marketplace services over HTTP.
package httpx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-delivery-marketplace/internal/accounts"
	"github.com/ariefcatur/go-delivery-marketplace/internal/auth"
	"github.com/ariefcatur/go-delivery-marketplace/internal/cart"
	"github.com/ariefcatur/go-delivery-marketplace/internal/catalog"
	"github.com/ariefcatur/go-delivery-marketplace/internal/dashboard"
	"github.com/ariefcatur/go-delivery-marketplace/internal/models"
	"github.com/ariefcatur/go-delivery-marketplace/internal/notify"
	"github.com/ariefcatur/go-delivery-marketplace/internal/orders"
	"github.com/ariefcatur/go-delivery-marketplace/internal/redisx"
	"github.com/ariefcatur/go-delivery-marketplace/internal/reviews"
	"github.com/ariefcatur/go-delivery-marketplace/internal/rewards"
	"github.com/ariefcatur/go-delivery-marketplace/internal/staff"
)

type API struct {
	Log    *slog.Logger
	Issuer *auth.Issuer
	// Redis may be nil; idempotency keys and the status cache are then skipped.
	Redis *redisx.Client

	Accounts  *accounts.Service
	Catalog   *catalog.Service
	Cart      *cart.Manager
	Orders    *orders.Service
	Notify    *notify.Dispatcher
	Reviews   *reviews.Service
	Staff     *staff.Service
	Dashboard *dashboard.Service
	Rewards   *rewards.Service
}

func (a *API) Register(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", a.register)
		r.Post("/auth/login", a.login)

		r.Get("/companies", a.listCompanies)
		r.Get("/companies/{id}", a.getCompany)
		r.Get("/categories", a.listCategories)
		r.Get("/categories/{id}", a.getCategory)
		r.Get("/products/company/{companyId}", a.productsByCompany)
		r.Get("/products/{id}", a.getProduct)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate(a.Issuer, a.writeError))
			a.routesAnyUser(r)

			r.Group(func(r chi.Router) {
				r.Use(a.only(models.UserCustomer))
				a.routesCustomer(r)
			})
			r.Group(func(r chi.Router) {
				r.Use(a.only(models.UserCompany))
				a.routesCompany(r)
			})
			r.Group(func(r chi.Router) {
				r.Use(a.only(models.UserDeveloper))
				a.routesDeveloper(r)
			})
			r.Group(func(r chi.Router) {
				r.Use(a.only(models.UserCompany, models.UserDeveloper))
				r.Post("/notifications", a.sendNotification)
			})
		})
	})
}

func (a *API) only(types ...models.UserType) func(next http.Handler) http.Handler {
	return auth.RequireType(a.writeError, types...)
}

func (a *API) routesAnyUser(r chi.Router) {
	r.Get("/users/me", a.me)
	r.Patch("/users/me", a.updateMe)
	r.Delete("/users/me", a.deleteMe)

	r.Get("/addresses", a.listAddresses)
	r.Post("/addresses", a.addAddress)
	r.Patch("/addresses/{id}", a.updateAddress)
	r.Delete("/addresses/{id}", a.deleteAddress)

	r.Get("/payment-methods", a.listPaymentMethods)
	r.Post("/payment-methods", a.addPaymentMethod)
	r.Patch("/payment-methods/{id}", a.updatePaymentMethod)
	r.Delete("/payment-methods/{id}", a.deletePaymentMethod)

	r.Get("/favorites", a.listFavorites)
	r.Post("/favorites/{companyId}", a.addFavorite)
	r.Delete("/favorites/{companyId}", a.removeFavorite)

	r.Get("/notifications", a.listNotifications)
	r.Patch("/notifications/{id}/read", a.markNotificationRead)
	r.Delete("/notifications/{id}", a.deleteNotification)
	r.Get("/notification-settings", a.notificationSettings)
	r.Patch("/notification-settings", a.updateNotificationSettings)
	r.Post("/notification-settings/reset", a.resetNotificationSettings)

	r.Get("/reviews/company/{companyId}", a.companyReviews)

	r.Get("/coupons", a.listCoupons)
	r.Get("/user-coupons", a.listUserCoupons)
	r.Post("/user-coupons/{couponId}", a.claimCoupon)
	r.Delete("/user-coupons/{id}", a.deleteUserCoupon)

	r.Get("/recommendations", a.recommendations)
	r.Get("/orders/{id}", a.getOrder)
	r.Get("/orders/{id}/status", a.orderStatus)
}

func (a *API) routesCustomer(r chi.Router) {
	r.Get("/cart", a.getCart)
	r.Post("/cart", a.addCartItem)
	r.Patch("/cart/{itemId}", a.updateCartItem)
	r.Delete("/cart/{itemId}", a.removeCartItem)
	r.Delete("/cart", a.clearCart)
	r.Post("/cart/checkout", a.checkout)

	r.Get("/orders", a.myOrders)
	r.Get("/orders/active", a.activeOrder)
	r.Patch("/orders/{id}/cancel", a.cancelOrder)
	r.Post("/orders/{id}/repeat", a.repeatOrder)
	r.Post("/orders/repeat-last", a.repeatLastOrder)

	r.Post("/reviews", a.createReview)
	r.Get("/reviews/my", a.myReviews)
}

func (a *API) routesCompany(r chi.Router) {
	r.Post("/companies", a.createCompany)
	r.Patch("/companies/block-user", a.blockUser)
	r.Patch("/companies/unblock-user", a.unblockUser)
	r.Patch("/companies/{id}", a.updateCompany)
	r.Delete("/companies/{id}", a.deleteCompany)
	r.Patch("/companies/{id}/block-region", a.blockRegion)
	r.Patch("/companies/{id}/unblock-region", a.unblockRegion)

	r.Post("/products", a.createProduct)
	r.Patch("/products/{id}", a.updateProduct)
	r.Delete("/products/{id}", a.deleteProduct)

	r.Get("/stock", a.listStock)
	r.Patch("/stock/{productId}", a.setStock)
	r.Delete("/stock/{productId}", a.deleteStock)

	r.Get("/staff", a.listStaff)
	r.Post("/staff", a.createStaff)
	r.Patch("/staff/{id}", a.updateStaff)
	r.Delete("/staff/{id}", a.deactivateStaff)

	r.Get("/company-orders", a.companyOrders)
	r.Get("/company-orders/couriers", a.couriers)
	r.Patch("/company-orders/{id}/status", a.setOrderStatus)
	r.Patch("/company-orders/{id}/assign", a.assignCourier)

	r.Get("/reviews/my-company", a.myCompanyReviews)
	r.Post("/user-reviews", a.rateUser)

	r.Route("/company-dashboard", func(r chi.Router) {
		r.Get("/orders/total", a.dashboardTotalOrders)
		r.Get("/orders/status-count", a.dashboardStatusCount)
		r.Get("/total-sales", a.dashboardTotalSales)
		r.Get("/ratings", a.dashboardRatings)
		r.Get("/top-products", a.dashboardTopProducts)
	})
}

func (a *API) routesDeveloper(r chi.Router) {
	r.Post("/categories", a.createCategory)
	r.Patch("/categories/{id}", a.updateCategory)
	r.Delete("/categories/{id}", a.deleteCategory)

	r.Post("/notifications/broadcast", a.broadcastNotification)

	r.Post("/coupons", a.createCoupon)
	r.Patch("/coupons/{id}", a.updateCoupon)
	r.Delete("/coupons/{id}", a.deleteCoupon)
}
