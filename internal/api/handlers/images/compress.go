package images

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/avraam311/image-compressor/internal/api/handlers"
	"github.com/avraam311/image-compressor/internal/models"
	service "github.com/avraam311/image-compressor/internal/service/images"

	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"
)

const (
	formFieldFile    = "file"
	formFieldQuality = "quality"
	contentTypeJPEG  = "image/jpeg"
)

var errUploadTooLarge = errors.New("uploaded file is too large")

func (h *Handler) CompressImage(c *ginext.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	req, err := h.readUpload(c)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			zlog.Logger.Warn().Err(err).Int64("limit", maxErr.Limit).Msg("upload exceeds size limit")
			handlers.Fail(c.Writer, http.StatusRequestEntityTooLarge, errUploadTooLarge)
			return
		}

		zlog.Logger.Warn().Err(err).Msg("invalid upload")
		handlers.Fail(c.Writer, http.StatusBadRequest, clientMessage(err))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		err = classifyValidation(err)
		zlog.Logger.Warn().Err(err).Str("filename", req.Filename).Int("quality", req.Quality).Msg("failed to validate upload")
		handlers.Fail(c.Writer, http.StatusBadRequest, clientMessage(err))
		return
	}

	res, err := h.service.Compress(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFile),
			errors.Is(err, service.ErrEmptyFilename),
			errors.Is(err, service.ErrInvalidQuality),
			errors.Is(err, service.ErrDecode),
			errors.Is(err, service.ErrEncode):
			zlog.Logger.Warn().Err(err).Str("filename", req.Filename).Msg("image compression rejected")
			handlers.Fail(c.Writer, http.StatusBadRequest, clientMessage(err))
			return
		}

		zlog.Logger.Error().Err(err).Str("filename", req.Filename).Msg("failed to compress image")
		handlers.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	handlers.Attachment(c.Writer, contentTypeJPEG, res.Filename, res.Bytes)
}

func (h *Handler) readUpload(c *ginext.Context) (*models.UploadRequest, error) {
	fh, err := c.FormFile(formFieldFile)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, err
		}
		return nil, fmt.Errorf("%w - %w", service.ErrMissingFile, err)
	}

	quality, err := h.quality(c)
	if err != nil {
		return nil, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w - %w", service.ErrMissingFile, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w - %w", service.ErrMissingFile, err)
	}

	return &models.UploadRequest{
		FileBytes: data,
		Filename:  strings.TrimSpace(fh.Filename),
		Quality:   quality,
	}, nil
}

// quality reads the form field first, then the query string.
func (h *Handler) quality(c *ginext.Context) (int, error) {
	raw, ok := c.GetPostForm(formFieldQuality)
	if !ok {
		raw, ok = c.GetQuery(formFieldQuality)
	}
	if !ok {
		return h.defaultQuality, nil
	}

	q, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w - %q", service.ErrInvalidQuality, raw)
	}

	return q, nil
}

func classifyValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	for _, fe := range verrs {
		switch fe.Field() {
		case "Filename":
			return fmt.Errorf("%w - %w", service.ErrEmptyFilename, err)
		case "Quality":
			return fmt.Errorf("%w - %w", service.ErrInvalidQuality, err)
		}
	}

	return err
}

// clientMessage hides wrapped internals and keeps only the classified reason.
func clientMessage(err error) error {
	for _, known := range []error{
		service.ErrMissingFile,
		service.ErrEmptyFilename,
		service.ErrInvalidQuality,
		service.ErrDecode,
		service.ErrEncode,
	} {
		if errors.Is(err, known) {
			return fmt.Errorf("image compression failed: %s", known.Error())
		}
	}

	return fmt.Errorf("image compression failed: invalid request")
}
