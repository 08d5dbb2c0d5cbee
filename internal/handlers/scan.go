package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"wrcheck/internal/scanner"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK = "ok"

	errReadDump    = "failed to read stat dump"
	errScanFailed  = "failed to scan stat dump"
	errGetState    = "failed to load bench state"
	errInvalidBool = "invalid boolean query parameter: "

	// maxDumpBytes bounds one uploaded stat dump.
	maxDumpBytes = 32 << 20
	defaultDump  = "upload"
)

// @Summary      Scan a WR-Core stat dump
// @Description  Body is the raw text of a stat dump. The sync check compares every ss:'STATE' token with the expected state; the temperature check counts readings outside the open range (min, max). A malformed range skips the temperature check and is reported in arg_error.
// @Tags         scan
// @Accept       plain
// @Produce      json
// @Param        sync     query  bool    false  "Check servo state"
// @Param        state    query  string  false  "Expected servo state"  default(TRACK_PHASE)
// @Param        temp     query  string  false  "Temperature range min,max"  example(30,50)
// @Param        verbose  query  bool    false  "Include mean temperature and mismatching lines"
// @Param        name     query  string  false  "Source name recorded in the report"
// @Success      200  {object}  models.ScanReport
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/scan [post]
// @Security     BearerAuth
func (h *Handler) scan(c *gin.Context) {
	opts, err := scanOptions(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	name := c.DefaultQuery("name", defaultDump)

	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxDumpBytes)
	rep, err := h.services.Scan.Scan(c.Request.Context(), name, body, opts)
	if err != nil {
		if errors.Is(err, scanner.ErrRead) {
			h.logAndJSONError(c, http.StatusBadRequest, errReadDump, "scan_read_failed", err, "name", name)
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errScanFailed, "scan_failed", err, "name", name)
		return
	}
	if h.log != nil && rep.Failures > 0 {
		h.log.Warnw("scan_failures", "name", name, "sync_mismatches", rep.SyncMismatches, "out_of_range", rep.OutOfRange)
	}
	c.JSON(http.StatusOK, rep)
}

func scanOptions(c *gin.Context) (scanner.Options, error) {
	var opts scanner.Options
	for key, dst := range map[string]*bool{"sync": &opts.Sync, "verbose": &opts.Verbose} {
		v := c.Query(key)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return scanner.Options{}, errors.New(errInvalidBool + key)
		}
		*dst = b
	}
	opts.ExpectedState = c.Query("state")
	opts.Temp = c.Query("temp")
	return opts, nil
}

// @Summary      Get bench state
// @Description  Relay levels and the most recent scan report.
// @Tags         monitoring
// @Produce      json
// @Success      200  {object}  models.BenchState
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	st, err := h.services.Monitoring.GetState(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}
