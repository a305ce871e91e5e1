package handlers

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"

	"marketlens/backend-go/internal/models"
	"marketlens/backend-go/internal/services"
)

// writeEndpointError converts a compute-path failure into the flat error
// body. Validation errors echo the offending parameter; provider failures
// become a 400 naming the endpoint; codec and shape defects are 500s;
// timeouts map to 504. Everything is logged with the endpoint name before
// the body is written, and no internal stack detail reaches the caller.
func writeEndpointError(w http.ResponseWriter, endpoint string, params string, err error) {
	log.Printf("error in %s (%s): %v", endpoint, params, err)

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		writeDetail(w, http.StatusBadRequest, "error in "+endpoint+": "+vErr.Error())
		return
	}

	var encErr *services.EncodingError
	if errors.As(err, &encErr) {
		writeDetail(w, http.StatusInternalServerError, "error in "+endpoint+": response encoding failed")
		return
	}
	var shapeErr *models.ShapeMismatchError
	if errors.As(err, &shapeErr) {
		writeDetail(w, http.StatusInternalServerError, "error in "+endpoint+": response shape mismatch")
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		writeDetail(w, http.StatusGatewayTimeout, "error in "+endpoint+": request timed out")
		return
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		writeDetail(w, http.StatusGatewayTimeout, "error in "+endpoint+": request timed out")
		return
	}

	// Anything else came out of the provider call.
	writeDetail(w, http.StatusBadRequest, "error in "+endpoint+": "+err.Error())
}
