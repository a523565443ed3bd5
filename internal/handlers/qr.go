package handlers

import (
	"fmt"
	"net/http"

	qrcode "github.com/skip2/go-qrcode"
)

// documentQR renders the tracking QR printed on paper routing slips. The code
// encodes the public tracking URL so a scan lands on the chain view.
func (r *Router) documentQR(w http.ResponseWriter, req *http.Request) {
	doc, ok := r.loadVisibleDocument(w, req)
	if !ok {
		return
	}

	url := fmt.Sprintf("%s/api/documents/%s/chain?code=%s", r.cfg.PublicBaseURL, doc.ID, doc.TrackingCode)
	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to render QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
