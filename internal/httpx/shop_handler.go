package httpx

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-heritage-shop.git/internal/address"
	"github.com/ariefcatur/go-heritage-shop.git/internal/catalog"
	"github.com/ariefcatur/go-heritage-shop.git/internal/checkout"
	"github.com/ariefcatur/go-heritage-shop.git/internal/redisx"
	"github.com/ariefcatur/go-heritage-shop.git/internal/shop"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StatusReader is the read side of the checkout repository.
type StatusReader interface {
	GetStatus(ctx context.Context, id string) (checkout.Status, string, error)
}

type ShopHandler struct {
	Shop          *shop.Service
	Checkouts     StatusReader
	Redis         redis.Cmdable
	Log           *zap.Logger
	SecureCookies bool
}

type addItemReq struct {
	ProductID string `json:"productId"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Qty       int    `json:"qty"`
}

type setQtyReq struct {
	Qty int `json:"qty"`
}

type couponReq struct {
	Code string `json:"code"`
}

type registerReq struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Remember        bool   `json:"remember"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type rememberReq struct {
	Remember bool `json:"remember"`
}

type addressReq struct {
	address.Address
	Remember bool `json:"remember"`
}

type consentReq struct {
	Accept bool `json:"accept"`
}

type checkoutReq struct {
	Method string `json:"method"`
}

func (h *ShopHandler) Register(r *chi.Mux) {
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)
	r.Get("/categories", h.listCategories)
	r.Get("/checkouts/{id}", h.getCheckout)

	r.Group(func(r chi.Router) {
		r.Use(Visitor(h.SecureCookies))

		r.Get("/cart", h.getCart)
		r.Post("/cart/items", h.addItem)
		r.Patch("/cart/items/{index}", h.setQuantity)
		r.Delete("/cart/items/{index}", h.removeItem)
		r.Post("/cart/coupon", h.applyCoupon)

		r.Get("/account", h.getAccount)
		r.Post("/account/register", h.register)
		r.Post("/account/login", h.login)
		r.Post("/account/guest", h.guest)
		r.Post("/account/logout", h.logout)

		r.Get("/address", h.getAddress)
		r.Post("/address", h.saveAddress)

		r.Get("/onboarding", h.getOnboarding)
		r.Post("/onboarding/welcome/dismiss", h.dismissWelcome)
		r.Post("/onboarding/daily-offer/dismiss", h.dismissDailyOffer)
		r.Post("/consent", h.setConsent)

		r.Post("/checkout", h.checkout)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// decode reads an optional JSON body; an empty body leaves v untouched.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
	return false
}

func (h *ShopHandler) session(r *http.Request) *shop.Session {
	profile, sess := VisitorIDs(r.Context())
	return h.Shop.Session(profile, sess).WithTrace(middleware.GetReqID(r.Context()))
}

func (h *ShopHandler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.Log.Error("request failed",
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func (h *ShopHandler) respond(w http.ResponseWriter, r *http.Request, res shop.Result, err error) {
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ShopHandler) view(w http.ResponseWriter, r *http.Request, pick func(shop.View) any) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	v, err := h.session(r).View(ctx)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pick(v))
}

func indexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid index"})
		return 0, false
	}
	return i, true
}

// ---- catalog ----

func (h *ShopHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, h.Shop.Catalog().Search(q.Get("q"), q.Get("category")))
}

func (h *ShopHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.Shop.Catalog().Get(chi.URLParam(r, "id"))
	if errors.Is(err, catalog.ErrProductNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ShopHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Shop.Catalog().Categories())
}

// ---- cart ----

func (h *ShopHandler) getCart(w http.ResponseWriter, r *http.Request) {
	h.view(w, r, func(v shop.View) any { return v })
}

func (h *ShopHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemReq
	if !decode(w, r, &req) {
		return
	}
	res, err := h.session(r).AddToCart(r.Context(), req.ProductID, req.Color, req.Size, req.Qty)
	h.respond(w, r, res, err)
}

func (h *ShopHandler) setQuantity(w http.ResponseWriter, r *http.Request) {
	idx, ok := indexParam(w, r)
	if !ok {
		return
	}
	var req setQtyReq
	if !decode(w, r, &req) {
		return
	}
	res, err := h.session(r).SetQuantity(r.Context(), idx, req.Qty)
	h.respond(w, r, res, err)
}

func (h *ShopHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	idx, ok := indexParam(w, r)
	if !ok {
		return
	}
	res, err := h.session(r).RemoveItem(r.Context(), idx)
	h.respond(w, r, res, err)
}

func (h *ShopHandler) applyCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponReq
	if !decode(w, r, &req) {
		return
	}
	res, err := h.session(r).ApplyCoupon(r.Context(), req.Code)
	h.respond(w, r, res, err)
}

// ---- account ----

func (h *ShopHandler) getAccount(w http.ResponseWriter, r *http.Request) {
	h.view(w, r, func(v shop.View) any { return v.Account })
}

func (h *ShopHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if !decode(w, r, &req) {
		return
	}
	res, err := h.session(r).Register(r.Context(), req.Email, req.Password, req.ConfirmPassword, req.Remember)
	h.respond(w, r, res, err)
}

func (h *ShopHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if !decode(w, r, &req) {
		return
	}
	res, err := h.session(r).Login(r.Context(), req.Email, req.Password, req.Remember)
	h.respond(w, r, res, err)
}

func (h *ShopHandler) guest(w http.ResponseWriter, r *http.Request) {
	var req rememberReq
	if !decode(w, r, &req) {
		return
	}
	res, err := h.session(r).Guest(r.Context(), req.Remember)
	h.respond(w, r, res, err)
}

func (h *ShopHandler) logout(w http.ResponseWriter, r *http.Request) {
	res, err := h.session(r).Logout(r.Context())
	h.respond(w, r, res, err)
}

// ---- address & onboarding ----

func (h *ShopHandler) getAddress(w http.ResponseWriter, r *http.Request) {
	h.view(w, r, func(v shop.View) any { return map[string]any{"address": v.Address} })
}

func (h *ShopHandler) saveAddress(w http.ResponseWriter, r *http.Request) {
	var req addressReq
	if !decode(w, r, &req) {
		return
	}
	res, err := h.session(r).SaveAddress(r.Context(), req.Address, req.Remember)
	h.respond(w, r, res, err)
}

func (h *ShopHandler) getOnboarding(w http.ResponseWriter, r *http.Request) {
	h.view(w, r, func(v shop.View) any { return v.Onboarding })
}

func (h *ShopHandler) dismissWelcome(w http.ResponseWriter, r *http.Request) {
	res, err := h.session(r).DismissWelcome(r.Context())
	h.respond(w, r, res, err)
}

func (h *ShopHandler) dismissDailyOffer(w http.ResponseWriter, r *http.Request) {
	res, err := h.session(r).DismissDailyOffer(r.Context())
	h.respond(w, r, res, err)
}

func (h *ShopHandler) setConsent(w http.ResponseWriter, r *http.Request) {
	var req consentReq
	if !decode(w, r, &req) {
		return
	}
	res, err := h.session(r).SetConsent(r.Context(), req.Accept)
	h.respond(w, r, res, err)
}

// ---- checkout ----

func (h *ShopHandler) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutReq
	if !decode(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.session(r).Checkout(ctx, req.Method)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if !res.OK {
		writeJSON(w, http.StatusOK, res)
		return
	}

	// REQUESTED hanya kalau worker belum menulis keputusan
	if _, err := redisx.CacheCheckoutStatusIfAbsent(ctx, h.Redis, res.CheckoutID, redisx.CheckoutStatus{Status: string(checkout.StatusRequested)}); err != nil {
		h.Log.Warn("cache checkout status", zap.Error(err))
	}
	writeJSON(w, http.StatusAccepted, res)
}

func (h *ShopHandler) getCheckout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// 1) coba cache
	if st, ok, err := redisx.CachedCheckoutStatus(ctx, h.Redis, id); err == nil && ok {
		writeJSON(w, http.StatusOK, st)
		return
	}

	// 2) fallback DB
	status, reason, err := h.Checkouts.GetStatus(ctx, id)
	if errors.Is(err, checkout.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	st := redisx.CheckoutStatus{Status: string(status), Reason: reason}
	_, _ = redisx.CacheCheckoutStatusIfAbsent(ctx, h.Redis, id, st)
	writeJSON(w, http.StatusOK, st)
}
