package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/St1cky1/task-tracker/internal/entity"
	"github.com/St1cky1/task-tracker/internal/usecase"
	"github.com/go-chi/chi/v5"
)

type RemarkHandler struct {
	remarkService RemarkUsecase
}

func NewRemarkHandler(remarkService RemarkUsecase) *RemarkHandler {
	return &RemarkHandler{remarkService: remarkService}
}

// CreateRemark принимает task_id и comment JSON телом или query параметрами
func (h *RemarkHandler) CreateRemark(w http.ResponseWriter, r *http.Request) {
	var req entity.CreateRemarkRequest

	query := r.URL.Query()
	if query.Has("task_id") {
		taskID, err := strconv.Atoi(strings.TrimSpace(query.Get("task_id")))
		if err != nil {
			WriteError(w, r, entity.NewValidationError("invalid task_id"))
			return
		}
		req.TaskID = taskID
		req.Comment = query.Get("comment")
		if err := validateStruct(&req); err != nil {
			WriteError(w, r, err)
			return
		}
	} else if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	remark, err := h.remarkService.AddRemark(r.Context(), actorFrom(r), &req, nil)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, remark)
}

// CreateRemarkWithFile - multipart: task_id, comment, необязательный file
func (h *RemarkHandler) CreateRemarkWithFile(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r, usecase.MaxAttachmentSize+multipartMemory); err != nil {
		WriteError(w, r, err)
		return
	}

	taskID, err := strconv.Atoi(strings.TrimSpace(r.FormValue("task_id")))
	if err != nil || taskID <= 0 {
		WriteError(w, r, entity.NewValidationError("invalid task_id"))
		return
	}

	file, err := readAttachment(r, "file")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	req := entity.CreateRemarkRequest{TaskID: taskID, Comment: r.FormValue("comment")}
	remark, err := h.remarkService.AddRemark(r.Context(), actorFrom(r), &req, file)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, remark)
}

func (h *RemarkHandler) ListRemarks(w http.ResponseWriter, r *http.Request) {
	taskID, err := pathInt(r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	remarks, err := h.remarkService.ListRemarks(r.Context(), actorFrom(r), taskID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if remarks == nil {
		remarks = []entity.Remark{}
	}
	writeJSON(w, http.StatusOK, remarks)
}

// UpdateRemark принимает JSON {comment} или multipart с comment и/или file
func (h *RemarkHandler) UpdateRemark(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req entity.UpdateRemarkRequest
	var file *entity.Attachment

	if isMultipart(r) {
		if err := parseMultipart(w, r, usecase.MaxAttachmentSize+multipartMemory); err != nil {
			WriteError(w, r, err)
			return
		}
		if _, ok := r.MultipartForm.Value["comment"]; ok {
			comment := r.FormValue("comment")
			req.Comment = &comment
		}
		var err error
		file, err = readAttachment(r, "file")
		if err != nil {
			WriteError(w, r, err)
			return
		}
	} else if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	remark, err := h.remarkService.UpdateRemark(r.Context(), actorFrom(r), id, &req, file)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, remark)
}

func (h *RemarkHandler) DeleteRemark(w http.ResponseWriter, r *http.Request) {
	if err := h.remarkService.DeleteRemark(r.Context(), actorFrom(r), chi.URLParam(r, "id")); err != nil {
		WriteError(w, r, err)
		return
	}
	writeMessage(w, "Remark deleted successfully")
}

// DownloadFile - GET /files/{id}, вложение отдаётся как attachment
func (h *RemarkHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	meta, body, err := h.remarkService.OpenFile(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	streamFile(w, meta, body, "attachment")
}
