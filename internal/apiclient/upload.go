package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"scholarvault/internal/config"
	"scholarvault/internal/domain"
	"scholarvault/internal/domain/models/library"
)

var pdfMagic = []byte("%PDF-")

// UploadPDF uploads the PDF at path. The server stores it, extracts
// metadata and returns the created document.
//
// progress, when non-nil, sees UploadUploading while the body is streamed,
// UploadExtracting once the body is fully sent, then UploadDone or
// UploadFailed. Non-PDF files are rejected before any request is made.
func (c *Client) UploadPDF(ctx context.Context, path string, progress library.UploadProgressFunc) (*library.Document, error) {
	f, size, err := openUpload(path, config.MaxUploadBytes)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(f, head); err != nil || !bytes.Equal(head, pdfMagic) {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("%s is not a PDF file", filepath.Base(path))}
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind %s: %w", path, err)
	}

	if progress == nil {
		progress = func(library.UploadProgress) {}
	}

	var doc library.Document
	err = c.sendFile(ctx, fileUpload{
		path:     "/api/documents/upload",
		name:     filepath.Base(path),
		mime:     "application/pdf",
		r:        f,
		size:     size,
		progress: progress,
		fallback: "Failed to upload PDF",
		out:      &doc,
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// UploadProfileImage replaces the user's profile image
func (c *Client) UploadProfileImage(ctx context.Context, path string) (*library.User, error) {
	f, size, err := openUpload(path, config.MaxUploadBytes)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var user library.User
	err = c.sendFile(ctx, fileUpload{
		path:     "/api/user/profile-image",
		name:     filepath.Base(path),
		r:        f,
		size:     size,
		progress: func(library.UploadProgress) {},
		fallback: "Failed to upload profile image",
		out:      &user,
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func openUpload(path string, limit int64) (*os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open upload: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("stat upload: %w", err)
	}
	if info.IsDir() {
		f.Close()
		return nil, 0, &domain.ValidationError{Message: fmt.Sprintf("%s is a directory", path)}
	}
	if info.Size() > limit {
		f.Close()
		return nil, 0, &domain.ValidationError{
			Message: fmt.Sprintf("%s is %d bytes, the limit is %d", filepath.Base(path), info.Size(), limit),
		}
	}
	return f, info.Size(), nil
}

type fileUpload struct {
	path     string
	name     string
	mime     string // part content type; empty lets multipart pick octet-stream
	r        io.Reader
	size     int64
	progress library.UploadProgressFunc
	fallback string
	out      any
}

// sendFile streams a single-file multipart body through a pipe so the file
// is never held in memory.
func (c *Client) sendFile(ctx context.Context, up fileUpload) error {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	report := func(phase library.UploadPhase, sent int64) {
		up.progress(library.UploadProgress{Phase: phase, FileName: up.name, BytesSent: sent, Total: up.size})
	}
	report(library.UploadUploading, 0)

	written := make(chan error, 1)
	go func() {
		err := writeFilePart(mw, up, func(sent int64) { report(library.UploadUploading, sent) })
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
		if err == nil {
			report(library.UploadExtracting, up.size)
		}
		written <- err
	}()

	err := c.do(ctx, call{
		method:      http.MethodPost,
		path:        up.path,
		body:        pr,
		contentType: mw.FormDataContentType(),
		upload:      true,
		fallback:    up.fallback,
		out:         up.out,
	})

	// Unblocks the writer if the server answered before reading everything
	pr.CloseWithError(errUploadFinished)
	writeErr := <-written

	if err != nil {
		report(library.UploadFailed, 0)
		return err
	}
	if writeErr != nil && !errors.Is(writeErr, errUploadFinished) {
		report(library.UploadFailed, 0)
		return fmt.Errorf("stream upload: %w", writeErr)
	}
	report(library.UploadDone, up.size)
	return nil
}

var errUploadFinished = errors.New("upload finished")

func writeFilePart(mw *multipart.Writer, up fileUpload, onProgress func(int64)) error {
	var part io.Writer
	var err error
	if up.mime != "" {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(up.name)))
		header.Set("Content-Type", up.mime)
		part, err = mw.CreatePart(header)
	} else {
		part, err = mw.CreateFormFile("file", up.name)
	}
	if err != nil {
		return err
	}

	_, err = io.Copy(part, &countingReader{r: up.r, onRead: onProgress})
	return err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// countingReader reports the running byte count after every read
type countingReader struct {
	r      io.Reader
	n      int64
	onRead func(int64)
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.n += int64(n)
		cr.onRead(cr.n)
	}
	return n, err
}
