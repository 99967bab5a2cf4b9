package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/valyala/fastjson"
)

const metadataBlockedMessage = "Metadata cannot be updated from this route."

// BlockRequestBodyMetadata rejects JSON bodies with a top-level "meta" key.
// Metadata arrays change only through the relationship endpoints. The body
// is restored for the handler.
func BlockRequestBodyMetadata(next echo.HandlerFunc) echo.HandlerFunc {
	var parsers fastjson.ParserPool

	return func(c echo.Context) error {
		req := c.Request()
		if req.Body == nil {
			return next(c)
		}

		body, err := io.ReadAll(req.Body)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Can not read request body")
		}
		req.Body = io.NopCloser(bytes.NewReader(body))

		if len(bytes.TrimSpace(body)) == 0 {
			return next(c)
		}

		p := parsers.Get()
		defer parsers.Put(p)

		v, err := p.ParseBytes(body)
		if err != nil {
			// Malformed JSON is left to the binder.
			return next(c)
		}
		if v.Type() == fastjson.TypeObject && v.Exists("meta") {
			return echo.NewHTTPError(http.StatusBadRequest, metadataBlockedMessage)
		}
		return next(c)
	}
}
