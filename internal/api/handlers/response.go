package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/St1cky1/task-tracker/internal/api/middleware"
	"github.com/St1cky1/task-tracker/internal/entity"
	"github.com/St1cky1/task-tracker/internal/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

// multipartMemory - сколько multipart формы держим в памяти, остальное во временных файлах
const multipartMemory = 8 << 20

var validate = newValidator()

// newValidator - в ошибках валидации поля называются по json тегам
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.GetLogger().WithError(err).Warn("failed to encode response")
	}
}

func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, messageResponse{Message: message})
}

// WriteError - единственное место, где вид доменной ошибки превращается в HTTP статус
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	detail := "internal server error"

	switch entity.KindOf(err) {
	case entity.KindUnauthorized:
		status = http.StatusUnauthorized
		w.Header().Set("WWW-Authenticate", "Bearer")
	case entity.KindForbidden:
		status = http.StatusForbidden
	case entity.KindNotFound:
		status = http.StatusNotFound
	case entity.KindValidation:
		status = http.StatusUnprocessableEntity
	case entity.KindBusinessRule:
		status = http.StatusBadRequest
	case entity.KindTooManyRequests:
		status = http.StatusTooManyRequests
	default:
		log.GetLogger().
			WithError(err).
			WithField("request_id", chimw.GetReqID(r.Context())).
			WithField("path", r.URL.Path).
			Error("request failed")
	}

	if status != http.StatusInternalServerError {
		detail = err.Error()
	}
	writeJSON(w, status, errorResponse{Detail: detail})
}

// decodeJSON читает тело запроса и проверяет теги validate
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return entity.NewValidationError("request body is empty")
		}
		return entity.NewValidationError("invalid JSON body")
	}
	return validateStruct(dst)
}

func validateStruct(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
			fe := fieldErrors[0]
			return entity.NewValidationError(fmt.Sprintf("field %s failed on %s", fe.Field(), fe.Tag()))
		}
		return entity.NewValidationError(err.Error())
	}
	return nil
}

// pathInt - числовой параметр маршрута
func pathInt(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || v <= 0 {
		return 0, entity.NewValidationError(fmt.Sprintf("invalid %s", name))
	}
	return v, nil
}

// actorFrom - вызывающий из claims; Authenticate гарантирует их наличие
func actorFrom(r *http.Request) entity.Actor {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		return entity.Actor{}
	}
	return entity.Actor{ID: claims.EmployeeID, Role: claims.Role}
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

func parseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return entity.NewValidationError("request body too large")
		}
		return entity.NewValidationError("invalid multipart form")
	}
	return nil
}

// readAttachment читает файл из multipart поля; (nil, nil) если поля нет
func readAttachment(r *http.Request, field string) (*entity.Attachment, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, entity.NewValidationError("invalid file upload")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	return &entity.Attachment{
		FileName:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// streamFile отдаёт файл из хранилища с Content-Disposition
func streamFile(w http.ResponseWriter, meta *entity.StoredFile, body io.ReadCloser, disposition string) {
	defer body.Close()

	contentType := meta.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if meta.FileName != "" {
		w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": meta.FileName}))
	}
	if meta.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(meta.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil {
		log.GetLogger().WithError(err).WithField("file_id", meta.ID).Warn("file stream interrupted")
	}
}
