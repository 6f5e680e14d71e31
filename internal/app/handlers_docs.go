package app

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/altivest/portal-service/internal/sdk/docdb"
	"github.com/altivest/portal-service/internal/sdk/middleware"
	"github.com/altivest/portal-service/internal/sdk/models"
	"github.com/altivest/portal-service/internal/services/blob"
	"github.com/altivest/portal-service/internal/services/sentry"
)

const maxUploadSize = 20 << 20 // 20 MiB

// HandleUploadDoc stores a multipart file under {userID}/{fileName} and
// records its metadata. Image uploads get small and medium thumbnails
// alongside the original.
func (a *App) HandleUploadDoc(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		writeError(c, ErrMissingFields, map[string]string{"file": "required"})
		return
	}
	if fileHeader.Size > maxUploadSize {
		writeError(c, ErrUploadFailed, map[string]string{"file": "too_large"})
		return
	}

	name := filepath.Base(fileHeader.Filename)
	if name == "" || name == "." || name == "/" {
		writeError(c, ErrUploadFailed, map[string]string{"file": "invalid_name"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		a.toSentry(c, "UploadDoc", "open", sentry.LevelError, err)
		writeError(c, ErrUploadFailed, nil)
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectName := blob.UserObject(userID, name)
	if strings.HasPrefix(contentType, "image/") {
		err = a.blob.UploadWithThumbnails(c.Request.Context(), objectName, file, contentType)
	} else {
		err = a.blob.Upload(c.Request.Context(), objectName, file, fileHeader.Size, contentType)
	}
	if err != nil {
		a.toSentry(c, "UploadDoc", "upload", sentry.LevelError, err)
		writeError(c, ErrUploadFailed, nil)
		return
	}

	rec, err := a.db.CreateDocRecord(c.Request.Context(), models.DocRecord{
		UserID:      userID,
		Name:        name,
		ContentType: contentType,
		Size:        fileHeader.Size,
	})
	if err != nil {
		a.toSentry(c, "UploadDoc", "persist_metadata", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}

	c.JSON(http.StatusCreated, rec)
}

// HandleListDocs returns the metadata records for the user's uploads.
func (a *App) HandleListDocs(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	docs, err := a.db.ListDocRecords(c.Request.Context(), userID)
	if err != nil {
		a.toSentry(c, "ListDocs", "list", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// HandleDownloadDoc streams a stored object back to its owner.
func (a *App) HandleDownloadDoc(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	name := c.Param("name")
	rec, err := a.db.GetDocRecord(c.Request.Context(), userID, name)
	if err != nil {
		if errors.Is(err, docdb.ErrDBNotFound) {
			writeError(c, ErrNotFound, nil)
			return
		}
		a.toSentry(c, "DownloadDoc", "get_metadata", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}

	reader, err := a.blob.Download(c.Request.Context(), blob.UserObject(userID, name))
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			writeError(c, ErrNotFound, nil)
			return
		}
		a.toSentry(c, "DownloadDoc", "download", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}
	defer reader.Close()

	c.Header("Content-Type", rec.ContentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		a.toSentry(c, "DownloadDoc", "stream", sentry.LevelWarning, err)
	}
}

// HandleDeleteDoc removes the blob with its variants and the metadata doc.
func (a *App) HandleDeleteDoc(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	name := c.Param("name")
	if _, err := a.db.GetDocRecord(c.Request.Context(), userID, name); err != nil {
		if errors.Is(err, docdb.ErrDBNotFound) {
			writeError(c, ErrNotFound, nil)
			return
		}
		a.toSentry(c, "DeleteDoc", "get_metadata", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}

	if err := a.blob.DeleteWithThumbnails(c.Request.Context(), blob.UserObject(userID, name)); err != nil {
		a.toSentry(c, "DeleteDoc", "delete_blob", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}
	if err := a.db.DeleteDocRecord(c.Request.Context(), userID, name); err != nil && !errors.Is(err, docdb.ErrDBNotFound) {
		a.toSentry(c, "DeleteDoc", "delete_metadata", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}

	c.Status(http.StatusNoContent)
}

// HandleGetLogo streams the fixed-path company logo. Public.
func (a *App) HandleGetLogo(c *gin.Context) {
	reader, err := a.blob.Download(c.Request.Context(), blob.LogoObject)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			writeError(c, ErrNotFound, nil)
			return
		}
		a.toSentry(c, "GetLogo", "download", sentry.LevelError, err)
		writeError(c, ErrSomethingWentWrong, nil)
		return
	}
	defer reader.Close()

	c.Header("Content-Type", "image/png")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		a.toSentry(c, "GetLogo", "stream", sentry.LevelWarning, err)
	}
}
