package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	greenhouse "greenhouse_console"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

func (h *Handler) latest(c *gin.Context) {
	reading, err := h.repos.Readings.Latest(c.Request.Context())
	if err != nil {
		h.log.Errorw("latest_query_failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load latest reading"})
		return
	}
	dataResponse(c, reading)
}

func (h *Handler) last24h(c *gin.Context) {
	now := time.Now().UTC()
	series, err := h.repos.Readings.Range(c.Request.Context(), now.Add(-24*time.Hour), now)
	if err != nil {
		h.log.Errorw("series_query_failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load readings"})
		return
	}
	dataResponse(c, series)
}

func (h *Handler) byDate(c *gin.Context) {
	day, err := time.Parse(dateLayout, c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}
	series, err := h.repos.Readings.Range(c.Request.Context(), day, day.Add(24*time.Hour))
	if err != nil {
		h.log.Errorw("series_query_failed", "date", c.Param("date"), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load readings"})
		return
	}
	dataResponse(c, series)
}

// exportSpreadsheet streams the day's readings as a spreadsheet download.
func (h *Handler) exportSpreadsheet(c *gin.Context) {
	day, err := time.Parse(dateLayout, c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}
	series, err := h.repos.Readings.Range(c.Request.Context(), day, day.Add(24*time.Hour))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load readings"})
		return
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"timestamp", "temp", "hum", "light", "soil_moisture", "soil1", "soil2", "npk_n", "npk_p", "npk_k", "manual_override"})
	for _, r := range series {
		override := false
		if r.Actuators != nil {
			override = r.Actuators.ManualOverride
		}
		_ = w.Write([]string{
			r.Timestamp.Format(time.RFC3339),
			formatFloat(r.Temp), formatFloat(r.Hum), formatFloat(r.Light), formatFloat(r.SoilMoisture),
			formatFloat(r.Soil1), formatFloat(r.Soil2),
			formatFloat(r.NPKN), formatFloat(r.NPKP), formatFloat(r.NPKK),
			strconv.FormatBool(override),
		})
	}
	w.Flush()

	filename := fmt.Sprintf("greenhouse-data-%s.csv", day.Format(dateLayout))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

func (h *Handler) events24h(c *gin.Context) {
	// The engine does not journal per-actuator events; derive them from the
	// day's readings so the endpoint shape matches the real backend.
	now := time.Now().UTC()
	series, err := h.repos.Readings.Range(c.Request.Context(), now.Add(-24*time.Hour), now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load readings"})
		return
	}
	var events []greenhouse.SensorEvent
	var prev *greenhouse.ActuatorSet
	for i := range series {
		cur := series[i].Actuators
		if cur == nil {
			continue
		}
		if prev != nil && prev.ManualOverride != cur.ManualOverride {
			desc := "automation resumed"
			if cur.ManualOverride {
				desc = "manual override engaged"
			}
			events = append(events, greenhouse.SensorEvent{
				Timestamp:   series[i].Timestamp,
				Type:        "mode_change",
				Description: desc,
			})
		}
		prev = cur
	}
	dataResponse(c, events)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
