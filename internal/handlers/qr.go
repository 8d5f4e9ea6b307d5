package handlers

import (
	"bytes"
	"io"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"

	"github.com/relink-app/relink/internal/models"
)

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// QRCode renders the link's short URL as a PNG. Owner-scoped like the
// other detail views.
func (h *LinkHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	link, err := models.GetLinkByID(h.DB, chi.URLParam(r, "id"))
	if err != nil {
		modelError(w, err)
		return
	}
	if !models.CanModify(link.OwnerID, Principal(r.Context()), h.Cfg.AllowAnonymousEdit) {
		adminError(w, http.StatusForbidden, "forbidden", nil)
		return
	}

	shape := r.URL.Query().Get("shape") // square|circle
	fg := r.URL.Query().Get("fg")       // hex color
	dl := r.URL.Query().Get("dl")       // 0|1

	opts := []standard.ImageOption{
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
		standard.WithQRWidth(10),
		standard.WithBorderWidth(20),
		standard.WithBgTransparent(),
	}
	if shape == "circle" {
		opts = append(opts, standard.WithCircleShape())
	}
	if hexColorRe.MatchString(fg) {
		opts = append(opts, standard.WithFgColorRGBHex(fg))
	}

	qrc, err := qrcode.New(h.Cfg.BaseURL + "/" + link.ShortCode)
	if err != nil {
		adminError(w, http.StatusInternalServerError, "failed to generate qr code", err)
		return
	}

	var buf bytes.Buffer
	writer := standard.NewWithWriter(nopCloser{&buf}, opts...)
	if err := qrc.Save(writer); err != nil {
		adminError(w, http.StatusInternalServerError, "failed to render qr code", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if dl == "1" {
		w.Header().Set("Content-Disposition", "attachment; filename=\""+link.ShortCode+"-qr.png\"")
	}
	w.Write(buf.Bytes())
}
