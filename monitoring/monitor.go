// Package monitoring exposes a running simulation over HTTP so that long
// trace replays can be watched from outside the process.
package monitoring

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/browser"

	"github.com/sarchlab/csim/cache"
	"github.com/sarchlab/csim/runner"
)

// A Monitor serves read-only JSON views of a simulation: the cache
// geometry it was configured with and the progress counters of the
// runner.
type Monitor struct {
	geometry    cache.Geometry
	runner      *runner.Runner
	portNumber  int
	openBrowser bool
}

// NewMonitor creates a new Monitor.
func NewMonitor(geometry cache.Geometry, r *runner.Runner) *Monitor {
	return &Monitor{
		geometry: geometry,
		runner:   r,
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowserOpen makes StartServer open the monitor page in the default
// browser.
func (m *Monitor) WithBrowserOpen() *Monitor {
	m.openBrowser = true

	return m
}

// Router returns the HTTP routes the monitor serves.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/geometry", m.listGeometry)
	r.HandleFunc("/api/progress", m.listProgress)

	return r
}

// StartServer starts the monitor as a web server, on the configured port
// if there is one and on a random free port otherwise. It returns the URL
// the server listens on.
func (m *Monitor) StartServer() string {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	router := m.Router()
	go func() {
		err := http.Serve(listener, router)
		dieOnErr(err)
	}()

	if m.openBrowser {
		err := browser.OpenURL(url + "/api/progress")
		dieOnErr(err)
	}

	return url
}

func (m *Monitor) listGeometry(w http.ResponseWriter, _ *http.Request) {
	response := struct {
		SetIndexBits     uint32 `json:"set_index_bits"`
		WayAssociativity int    `json:"way_associativity"`
		BlockOffsetBits  uint32 `json:"block_offset_bits"`
		NumSets          uint64 `json:"num_sets"`
	}{
		SetIndexBits:     m.geometry.SetIndexBits,
		WayAssociativity: m.geometry.WayAssociativity,
		BlockOffsetBits:  m.geometry.BlockOffsetBits,
		NumSets:          m.geometry.NumSets(),
	}

	writeJSON(w, response)
}

func (m *Monitor) listProgress(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, m.runner.Progress())
}

func writeJSON(w http.ResponseWriter, value any) {
	encoded, err := json.Marshal(value)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")

	_, err = w.Write(encoded)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		panic(err)
	}
}
