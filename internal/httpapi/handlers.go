package httpapi

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"horse.fit/pdfdesk/internal/db"
	"horse.fit/pdfdesk/internal/document"
	"horse.fit/pdfdesk/internal/globaltime"
	"horse.fit/pdfdesk/internal/storage"
)

const rootMessage = "Servidor funcionando!"

var (
	errNoFile        = errors.New("no file part")
	errEmptyFilename = errors.New("empty filename")
)

func (s *Server) handleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": rootMessage})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "pdfdesk",
		"time":    globaltime.UTC(),
	})
}

func (s *Server) handleLanguages(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"languages": s.languages,
	})
}

func (s *Server) handleTranslatePDF(c echo.Context) error {
	form, upload, done, err := openDocument(c)
	defer done()
	if err != nil {
		return uploadError(c, err)
	}
	target := strings.TrimSpace(formValue(form, "targetLanguage"))
	if target == "" {
		return fail(c, http.StatusBadRequest, document.MsgNoTargetLanguage)
	}

	result, err := s.docs.Translate(c.Request().Context(), upload, target)
	if err != nil {
		return s.documentError(c, "translate-pdf", err)
	}

	s.logger.Debug().
		Str("source_lang", result.OriginalLanguage).
		Str("target_lang", target).
		Bool("skipped", result.Skipped).
		Str("provider", result.Provider).
		Int("chunks", result.Chunks).
		Int("pages", result.NumPages).
		Msg("pdf translated")
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleCorrectText(c echo.Context) error {
	form, upload, done, err := openDocument(c)
	defer done()
	if err != nil {
		return uploadError(c, err)
	}
	source := strings.TrimSpace(formValue(form, "sourceLanguage"))
	if source == "" {
		return fail(c, http.StatusBadRequest, document.MsgNoSourceLanguage)
	}

	result, err := s.docs.Correct(c.Request().Context(), upload, source)
	if err != nil {
		return s.documentError(c, "correct-text", err)
	}

	s.logger.Debug().
		Str("detected_lang", result.OriginalLanguage).
		Str("checker_lang", result.Language).
		Strs("steps", result.Steps).
		Int("pages", result.NumPages).
		Msg("pdf text corrected")
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleUploadPDF(c echo.Context) error {
	form, fh, err := uploadedFile(c)
	if form != nil {
		defer form.RemoveAll()
	}
	if err != nil {
		return uploadError(c, err)
	}
	if strings.TrimSpace(fh.Filename) == "" {
		return fail(c, http.StatusBadRequest, document.MsgEmptyFilename)
	}

	f, err := fh.Open()
	if err != nil {
		s.logger.Error().Err(err).Msg("open multipart file failed")
		return fail(c, http.StatusInternalServerError, document.MsgInternal)
	}
	defer f.Close()

	stored, err := s.uploads.SaveUpload(fh.Filename, f)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidFilename) {
			return fail(c, http.StatusBadRequest, document.MsgEmptyFilename)
		}
		s.logger.Error().Err(err).Str("filename", fh.Filename).Msg("store upload failed")
		return fail(c, http.StatusInternalServerError, document.MsgInternal)
	}

	if _, err := s.ledger.RecordUpload(c.Request().Context(), db.NewUpload{
		StoredName:   stored.Name,
		OriginalName: fh.Filename,
		StoredPath:   stored.Path,
		SizeBytes:    stored.Size,
		SHA256:       stored.SHA256,
		ContentType:  fh.Header.Get(echo.HeaderContentType),
	}); err != nil {
		s.logger.Error().Err(err).Str("stored_name", stored.Name).Msg("record upload failed")
	}

	s.logger.Info().
		Str("stored_name", stored.Name).
		Int64("size", stored.Size).
		Bool("overwrote", stored.Overwrote).
		Msg("upload stored")
	return c.JSON(http.StatusOK, map[string]string{"fileUrl": stored.Path})
}

// uploadedFile parses the multipart body and returns the "file" part. A
// "file" field sent without a filename is reported as errEmptyFilename.
func uploadedFile(c echo.Context) (*multipart.Form, *multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return nil, nil, he
		}
		return nil, nil, errNoFile
	}
	if files := form.File["file"]; len(files) > 0 && files[0] != nil {
		return form, files[0], nil
	}
	if _, sent := form.Value["file"]; sent {
		return form, nil, errEmptyFilename
	}
	return form, nil, errNoFile
}

// openDocument returns the "file" part for the processing endpoints. Unlike
// /upload-pdf they accept a part with an empty filename; its content is read
// from the form values. done releases the part and the form's temp files.
func openDocument(c echo.Context) (*multipart.Form, document.Upload, func(), error) {
	form, fh, err := uploadedFile(c)
	done := func() {
		if form != nil {
			_ = form.RemoveAll()
		}
	}
	switch {
	case errors.Is(err, errEmptyFilename):
		return form, document.Upload{Body: strings.NewReader(formValue(form, "file"))}, done, nil
	case err != nil:
		return form, document.Upload{}, done, err
	}

	f, err := fh.Open()
	if err != nil {
		return form, document.Upload{}, done, fmt.Errorf("open multipart file: %w", err)
	}
	return form, document.Upload{Filename: fh.Filename, Body: f}, func() {
		_ = f.Close()
		done()
	}, nil
}

func uploadError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, errEmptyFilename):
		return fail(c, http.StatusBadRequest, document.MsgEmptyFilename)
	case errors.Is(err, errNoFile):
		return fail(c, http.StatusBadRequest, document.MsgNoFile)
	default:
		return err
	}
}

func formValue(form *multipart.Form, key string) string {
	if form == nil {
		return ""
	}
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}
