package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// CheckoutPreference opens a hosted checkout for the posted items and answers with
// the bare {id, init_point, sandbox_init_point} body.
func CheckoutPreference(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		// Clients may forward extra processor fields (currency_id, picture_url).
		var payload checkout.PreferenceRequest
		if err := validators.DecodeJSONBody(r, &payload, validators.AllowUnknownFields()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreatePreference(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"preference_id":      result.ID,
				"external_reference": result.ExternalReference,
			})
			logg.Info(ctx, "checkout.preference_created")
		}
		responses.WriteJSON(w, http.StatusCreated, result)
	}
}
