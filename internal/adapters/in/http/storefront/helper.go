package storefront

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"storefront/internal/application/session"
	"storefront/internal/application/usecase"
	addressdom "storefront/internal/domain/address"
	cartdom "storefront/internal/domain/cart"
	"storefront/internal/domain/checkout"
	orderdom "storefront/internal/domain/order"
	pcbuilddom "storefront/internal/domain/pcbuild"
	productdom "storefront/internal/domain/product"
	userdom "storefront/internal/domain/user"
	"storefront/internal/infra/logging"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeMessage(w, http.StatusBadRequest, "invalid_json")
		return false
	}
	return true
}

// statusOf maps an application error to its HTTP status and error code.
func statusOf(err error) (int, string) {
	var (
		authErr     *usecase.AuthError
		requiredErr *usecase.AuthRequiredError
		profileErr  *usecase.ProfileWriteError
		readErr     *usecase.ProfileReadError
		addrErr     *usecase.AddressWriteError
	)

	switch {
	case errors.As(err, &requiredErr):
		return http.StatusUnauthorized, "auth_required"

	case errors.Is(err, userdom.ErrInvalidCredentials), errors.Is(err, userdom.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, userdom.ErrEmailInUse):
		return http.StatusConflict, "email_in_use"
	case errors.Is(err, userdom.ErrWeakPassword):
		return http.StatusBadRequest, "weak_password"
	case errors.Is(err, usecase.ErrAuthInProgress):
		return http.StatusConflict, "auth_in_progress"
	case errors.Is(err, usecase.ErrAuthCanceled):
		return http.StatusConflict, "auth_canceled"
	case errors.Is(err, usecase.ErrProfileUIDMismatch):
		return http.StatusForbidden, "uid_mismatch"
	case errors.Is(err, usecase.ErrPicturesUnavailable):
		return http.StatusServiceUnavailable, "pictures_unavailable"

	case errors.Is(err, userdom.ErrInvalidUID),
		errors.Is(err, userdom.ErrInvalidName),
		errors.Is(err, userdom.ErrInvalidEmail),
		errors.Is(err, userdom.ErrInvalidPhone),
		errors.Is(err, userdom.ErrEmptyPatch),
		errors.Is(err, userdom.ErrInvalidPicture):
		return http.StatusBadRequest, "invalid_profile"

	case errors.Is(err, addressdom.ErrInvalidID),
		errors.Is(err, addressdom.ErrInvalidUserID),
		errors.Is(err, addressdom.ErrInvalidAddressLine1),
		errors.Is(err, addressdom.ErrInvalidCity),
		errors.Is(err, addressdom.ErrInvalidCountry),
		errors.Is(err, addressdom.ErrInvalidType):
		return http.StatusBadRequest, "invalid_address"
	case errors.Is(err, addressdom.ErrNotFound):
		return http.StatusNotFound, "address_not_found"

	case errors.As(err, &authErr):
		return http.StatusBadGateway, "auth_failed"
	case errors.As(err, &profileErr), errors.As(err, &readErr):
		return http.StatusBadGateway, "profile_store_failed"
	case errors.As(err, &addrErr):
		return http.StatusBadGateway, "address_store_failed"

	case errors.Is(err, productdom.ErrNotFound):
		return http.StatusNotFound, "product_not_found"
	case errors.Is(err, productdom.ErrInvalidID):
		return http.StatusBadRequest, "invalid_product_id"
	case errors.Is(err, cartdom.ErrEntryNotFound):
		return http.StatusNotFound, "not_in_cart"
	case errors.Is(err, cartdom.ErrInvalidProduct), errors.Is(err, cartdom.ErrInvalidCart):
		return http.StatusBadRequest, "invalid_cart_item"
	case errors.Is(err, pcbuilddom.ErrInvalidProduct), errors.Is(err, pcbuilddom.ErrInvalidCategory):
		return http.StatusBadRequest, "invalid_builder_part"

	case errors.Is(err, checkout.ErrQuantityOutOfStock):
		return http.StatusUnprocessableEntity, "quantity_out_of_stock"
	case errors.Is(err, checkout.ErrInvalidQuantity):
		return http.StatusBadRequest, "invalid_quantity"
	case errors.Is(err, usecase.ErrNothingToOrder):
		return http.StatusBadRequest, "nothing_to_order"
	case errors.Is(err, usecase.ErrOrderSubmission):
		return http.StatusBadGateway, "order_submission_failed"
	case errors.Is(err, orderdom.ErrNotFound):
		return http.StatusNotFound, "order_not_found"

	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrInvalidID):
		return http.StatusNotFound, "session_not_found"
	}
	return http.StatusInternalServerError, "internal_error"
}

// writeErr writes the mapped status. Server-side failures are logged.
func (a *API) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := statusOf(err)
	if code >= http.StatusInternalServerError {
		logging.FromContext(r.Context(), a.log).Warn("[storefront] request failed",
			zap.String("path", r.URL.Path),
			zap.Int("status", code),
			zap.Error(err),
		)
	}
	writeJSON(w, code, map[string]string{"error": msg, "detail": err.Error()})
}

func trimmed(s string) string { return strings.TrimSpace(s) }
