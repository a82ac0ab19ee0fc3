package cart

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	cartsvc "github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// Service is the session cart surface the handlers drive.
type Service interface {
	Get(ctx context.Context, sessionID string) cartsvc.State
	AddItem(ctx context.Context, sessionID string, product cartsvc.Product, quantity int, selectedColor *string) cartsvc.State
	RemoveItem(ctx context.Context, sessionID, productID string) cartsvc.State
	UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) cartsvc.State
	Clear(ctx context.Context, sessionID string) cartsvc.State
	SetOpen(ctx context.Context, sessionID string, open bool) cartsvc.State
	PreferenceItems(ctx context.Context, sessionID string) []checkout.LineItem
}

// ProductLookup resolves the catalog product being added.
type ProductLookup interface {
	GetByID(ctx context.Context, id string) (*catalog.ProductDTO, error)
}

// CartFetch returns the session's cart.
func CartFetch(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := session(w, r, svc, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, svc.Get(r.Context(), sessionID))
	}
}

// CartAddItem snapshots a catalog product into the cart. Out of stock products are
// refused with a conflict.
func CartAddItem(svc Service, products ProductLookup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := session(w, r, svc, logg)
		if !ok {
			return
		}
		if products == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := products.GetByID(r.Context(), payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !product.InStock {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "product out of stock").WithDetails(map[string]any{"product_id": product.ID.String()}))
			return
		}

		color := payload.color()
		if color != nil && len(product.Colors) > 0 && !slices.Contains(product.Colors, *color) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "color not available").WithDetails(map[string]any{"selected_color": *color}))
			return
		}

		state := svc.AddItem(r.Context(), sessionID, toCartProduct(product), payload.quantity(), color)
		responses.WriteSuccess(w, state)
	}
}

// CartUpdateItem sets a line's quantity; zero or less removes it.
func CartUpdateItem(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := session(w, r, svc, logg)
		if !ok {
			return
		}

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state := svc.UpdateQuantity(r.Context(), sessionID, chi.URLParam(r, "productId"), *payload.Quantity)
		responses.WriteSuccess(w, state)
	}
}

func CartRemoveItem(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := session(w, r, svc, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, svc.RemoveItem(r.Context(), sessionID, chi.URLParam(r, "productId")))
	}
}

func CartClear(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := session(w, r, svc, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, svc.Clear(r.Context(), sessionID))
	}
}

// CartVisibility opens or closes the cart drawer.
func CartVisibility(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := session(w, r, svc, logg)
		if !ok {
			return
		}

		var payload visibilityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, svc.SetOpen(r.Context(), sessionID, *payload.Open))
	}
}

// CartCheckout serializes the cart into a payment preference. The body is
// optional since payer and back URLs both are. An empty cart is rejected by the
// checkout service.
func CartCheckout(svc Service, checkoutSvc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := session(w, r, svc, logg)
		if !ok {
			return
		}
		if checkoutSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload, validators.AllowEmptyBody()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := checkoutSvc.CreatePreference(r.Context(), checkout.PreferenceRequest{
			Items:    svc.PreferenceItems(r.Context(), sessionID),
			Payer:    payload.Payer,
			BackURLs: payload.BackURLs,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusCreated, result)
	}
}

func session(w http.ResponseWriter, r *http.Request, svc Service, logg *logger.Logger) (string, bool) {
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
		return "", false
	}
	sessionID := strings.TrimSpace(middleware.CartSessionFromContext(r.Context()))
	if sessionID == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "cart session missing"))
		return "", false
	}
	return sessionID, true
}
