package handler

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/labstack/echo/v4"

	"emergencyreport/internal/adapter/api/middleware"
	"emergencyreport/internal/domain/entity"
	"emergencyreport/internal/usecase"
	"emergencyreport/pkg/errors"
	"emergencyreport/pkg/logger"
	"emergencyreport/pkg/response"
)

const pictureField = "picture"

type ReportHandler struct {
	submissionUseCase *usecase.SubmissionUseCase
	queryUseCase      *usecase.ReportQueryUseCase
}

func NewReportHandler(submissionUseCase *usecase.SubmissionUseCase, queryUseCase *usecase.ReportQueryUseCase) *ReportHandler {
	return &ReportHandler{
		submissionUseCase: submissionUseCase,
		queryUseCase:      queryUseCase,
	}
}

// UploadLimit caps submission bodies at the picture budget plus form headroom.
func (h *ReportHandler) UploadLimit() echo.MiddlewareFunc {
	return middleware.UploadLimit(
		h.submissionUseCase.MaxUploadBytes(),
		errors.Attachment(h.submissionUseCase.FileTooLargeMessage(), nil),
	)
}

type submitReportRequest struct {
	EventType   string `form:"eventType" validate:"required"`
	Description string `form:"description" validate:"required"`
	Latitude    string `form:"latitude" validate:"required"`
	Longitude   string `form:"longitude" validate:"required"`
	Datetime    string `form:"datetime" validate:"required"`
	Email       string `form:"email" validate:"required"`
}

type listReportsResponse struct {
	Success bool             `json:"success"`
	Reports []*entity.Report `json:"reports"`
}

type statsResponse struct {
	Success bool          `json:"success"`
	Stats   usecase.Stats `json:"stats"`
}

func (h *ReportHandler) SubmitReport(c echo.Context) error {
	var req submitReportRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest(response.MissingFieldsMessage, err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	attachment, err := h.readPicture(c)
	if err != nil {
		return response.Error(c, err)
	}

	result, err := h.submissionUseCase.Submit(c.Request().Context(), usecase.SubmitReportInput{
		EventType:   req.EventType,
		Description: req.Description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Datetime:    req.Datetime,
		Email:       req.Email,
		Attachment:  attachment,
	})
	if err != nil {
		if errors.Is(err, errors.CodeStorage) {
			logger.Error("Error saving report: %v", err)
		}
		return response.Error(c, err)
	}

	return response.Submitted(c, result.Message, result.ReportID)
}

// readPicture returns nil when the optional picture field is absent.
func (h *ReportHandler) readPicture(c echo.Context) (*usecase.Attachment, error) {
	file, err := c.FormFile(pictureField)
	if err != nil {
		if stderrors.Is(err, http.ErrMissingFile) || stderrors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, errors.BadRequest("Invalid picture upload", err)
	}

	maxBytes := h.submissionUseCase.MaxUploadBytes()
	if file.Size > maxBytes {
		logger.Warn("Picture too large: %d bytes (max: %d)", file.Size, maxBytes)
		return nil, errors.Attachment(h.submissionUseCase.FileTooLargeMessage(), nil)
	}

	data, err := readLimited(file, maxBytes)
	if err != nil {
		return nil, errors.Internal("Failed to read picture", err)
	}

	return &usecase.Attachment{
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}

// readLimited reads at most limit+1 bytes so an oversized part is still detected
// when the header size is wrong.
func readLimited(file *multipart.FileHeader, limit int64) ([]byte, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return io.ReadAll(io.LimitReader(src, limit+1))
}

func filterFromQuery(c echo.Context) usecase.ReportFilter {
	return usecase.ReportFilter{
		EventType: c.QueryParam("eventType"),
		Search:    c.QueryParam("search"),
	}
}

func (h *ReportHandler) ListReports(c echo.Context) error {
	reports, err := h.queryUseCase.ListReports(c.Request().Context(), filterFromQuery(c))
	if err != nil {
		logger.Error("Error fetching reports: %v", err)
		return response.Error(c, err)
	}

	return response.Success(c, listReportsResponse{
		Success: true,
		Reports: reports,
	})
}

func (h *ReportHandler) GetStats(c echo.Context) error {
	stats, err := h.queryUseCase.Stats(c.Request().Context())
	if err != nil {
		logger.Error("Error computing report stats: %v", err)
		return response.Error(c, err)
	}

	return response.Success(c, statsResponse{
		Success: true,
		Stats:   stats,
	})
}

func (h *ReportHandler) ExportReports(c echo.Context) error {
	var buf bytes.Buffer
	err := h.queryUseCase.Export(c.Request().Context(), &buf, filterFromQuery(c))
	if stderrors.Is(err, usecase.ErrNothingToExport) {
		return response.Error(c, errors.New(errors.CodeNotFound, err.Error(), http.StatusNotFound, nil))
	}
	if err != nil {
		logger.Error("Error exporting reports: %v", err)
		return response.Error(c, err)
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	res.Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="emergency-reports-%d.csv"`, time.Now().UnixMilli()))
	res.Header().Add(echo.HeaderVary, echo.HeaderAcceptEncoding)

	if !acceptsGzip(c.Request()) {
		return c.Blob(http.StatusOK, res.Header().Get(echo.HeaderContentType), buf.Bytes())
	}

	res.Header().Set(echo.HeaderContentEncoding, "gzip")
	res.WriteHeader(http.StatusOK)
	gz := gzip.NewWriter(res)
	if _, err := gz.Write(buf.Bytes()); err != nil {
		gz.Close()
		return err
	}
	return gz.Close()
}

func acceptsGzip(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get(echo.HeaderAcceptEncoding), ",") {
		if strings.TrimSpace(strings.SplitN(part, ";", 2)[0]) == "gzip" {
			return true
		}
	}
	return false
}
