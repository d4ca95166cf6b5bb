// pkg/server/handlers.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package server

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/tankerops/tankersim/pkg/math"
	"github.com/tankerops/tankersim/pkg/sim"
	"github.com/tankerops/tankersim/pkg/util"
)

type missionStatus struct {
	TailNumber         string           `json:"tailNo"`
	State              sim.MissionState `json:"state"`
	Uptime             string           `json:"uptime"`
	TotalFlightMinutes int              `json:"totalFlightMinutes"`
	FuelRemaining      float64          `json:"fuelRemaining"`
	Position           string           `json:"position"`
	Heading            string           `json:"heading"`
	Records            int64            `json:"records"`

	CPUPercent    float64 `json:"cpuPercent"`
	SysMemory     string  `json:"sysMemory"`
	AllocMemory   string  `json:"allocMemory"`
	NumGoRoutines int     `json:"goroutines"`
}

func (ms missionStatus) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("tail", ms.TailNumber),
		slog.String("state", ms.State.String()),
		slog.Int("total_flight_minutes", ms.TotalFlightMinutes),
		slog.Float64("fuel_remaining", ms.FuelRemaining),
		slog.Int64("records", ms.Records))
}

func (s *Server) getStatus() (missionStatus, bool) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	s.mu.Lock()
	records := s.records
	mission := s.mission
	s.mu.Unlock()

	if mission == nil {
		return missionStatus{}, false
	}

	ac := mission.Aircraft()
	status := missionStatus{
		TailNumber:         ac.TailNumber,
		State:              mission.State(),
		Uptime:             time.Since(s.start).Round(time.Second).String(),
		TotalFlightMinutes: mission.TotalFlightMinutes(),
		FuelRemaining:      mission.FuelRemaining(),
		Position:           ac.Position().DMSString(),
		Heading:            strconv.Itoa(ac.Heading) + " (" + math.ShortCompass(float64(ac.Heading)) + ")",
		Records:            records,
		AllocMemory:        util.ByteCount(m.Alloc),
		NumGoRoutines:      runtime.NumGoroutine(),
	}

	// Interval 0 compares against the previous call so this doesn't
	// block the request.
	if usage, err := cpu.Percent(0, false); err == nil && len(usage) > 0 {
		status.CPUPercent = usage[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		status.SysMemory = util.ByteCount(vm.Used)
	} else {
		status.SysMemory = util.ByteCount(m.Sys)
	}

	return status, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status, ok := s.getStatus()
	if !ok {
		http.Error(w, "no mission", http.StatusServiceUnavailable)
		return
	}
	s.lg.Debug("Served status", slog.Any("status", status))
	writeJSON(w, status)
}

func (s *Server) latestHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	latest := s.latest
	s.mu.Unlock()

	if latest == nil {
		http.Error(w, "no telemetry yet", http.StatusNotFound)
		return
	}
	writeJSON(w, latest)
}

// recentHandler returns the records that are still in the cache, oldest
// first. An optional "since" query parameter (RFC3339) excludes records
// from before that time and "limit" returns only the most recent ones.
func (s *Server) recentHandler(w http.ResponseWriter, r *http.Request) {
	recs := s.recent.Values()

	if since := r.URL.Query().Get("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			http.Error(w, since+": invalid time", http.StatusBadRequest)
			return
		}
		recs = util.FilterSlice(recs, func(rec sim.Record) bool {
			rt, err := rec.Time()
			return err == nil && !rt.Before(t)
		})
	}

	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			http.Error(w, l+": invalid limit", http.StatusBadRequest)
			return
		}
		if n < len(recs) {
			recs = recs[len(recs)-n:]
		}
	}

	if recs == nil {
		recs = []sim.Record{}
	}
	writeJSON(w, recs)
}

var templateFuncs = template.FuncMap{"dms": func(r sim.Record) string {
	return math.Point2LL{r.Longitude, r.Latitude}.DMSString()
}}

var statusTemplate = template.Must(template.New("").Funcs(templateFuncs).Parse(`
<!DOCTYPE html>
<html>
<head>
<title>tankersim {{.Status.TailNumber}}</title>
</head>
<style>
table {
  border-collapse: collapse;
  width: 100%;
}

th, td {
  border: 1px solid #dddddd;
  padding: 8px;
  text-align: left;
}

tr:nth-child(even) {
  background-color: #f2f2f2;
}
</style>
<body>
<h1>Mission {{.Status.TailNumber}}</h1>
<ul>
  <li>State: {{.Status.State}}</li>
  <li>Uptime: {{.Status.Uptime}}</li>
  <li>Elapsed flight time: {{.Status.TotalFlightMinutes}} minutes</li>
  <li>Transfer fuel remaining: {{printf "%.2f" .Status.FuelRemaining}} lbs</li>
  <li>Position: {{.Status.Position}}</li>
  <li>Heading: {{.Status.Heading}}</li>
  <li>CPU usage: {{printf "%.0f" .Status.CPUPercent}}%</li>
  <li>System memory: {{.Status.SysMemory}}</li>
  <li>Running goroutines: {{.Status.NumGoRoutines}}</li>
</ul>

<h1>Recent Telemetry</h1>
<table>
  <tr>
  <th>Time</th>
  <th>Position</th>
  <th>Fuel</th>
  <th>Speed</th>
  <th>Heading</th>
  <th>Altitude</th>
  </tr>
{{range .Recent}}
  <tr>
  <td>{{.Timestamp}}</td>
  <td><tt>{{dms .}}</tt></td>
  <td>{{printf "%.2f" .RemainingFuel}}</td>
  <td>{{.Speed}}</td>
  <td>{{.Heading}}</td>
  <td>{{.Altitude}}</td>
  </tr>
{{end}}
</table>

</body>
</html>
`))

func (s *Server) pageHandler(w http.ResponseWriter, r *http.Request) {
	status, ok := s.getStatus()
	if !ok {
		http.Error(w, "no mission", http.StatusServiceUnavailable)
		return
	}

	data := struct {
		Status missionStatus
		Recent []sim.Record
	}{
		Status: status,
		Recent: s.recent.Values(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := statusTemplate.Execute(w, data); err != nil {
		s.lg.Errorf("status page: %v", err)
	}
}
