package armistice

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"code.armistice.org/golang/internal/observability"
)

const packetContentType = "application/octet-stream"

// HttpHandler exposes a Session over HTTP.
//
//	POST /packet  one request packet in the body, one reply packet in the response
//	GET  /status  JSON description of the root authority
//
// Packets are processed one at a time.
type HttpHandler struct {
	mut     sync.Mutex
	session *Session
	mux     *http.ServeMux
}

// NewHttpHandler returns an HttpHandler that feeds packets to session.
func NewHttpHandler(session *Session) *HttpHandler {
	rv := &HttpHandler{session: session, mux: http.NewServeMux()}
	rv.mux.HandleFunc("POST /packet", rv.servePacket)
	rv.mux.HandleFunc("GET /status", rv.serveStatus)
	return rv
}

func (self *HttpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	self.mux.ServeHTTP(w, r)
}

func (self *HttpHandler) servePacket(w http.ResponseWriter, r *http.Request) {
	log := observability.GetObservability(r.Context()).Log().With("handler", "packet")

	packet, err := io.ReadAll(io.LimitReader(r.Body, MaxPacketSize+1))
	if nil != err {
		errmsg := "failed reading request body"
		log.Error(errmsg, "error", err)
		writeError(w, http.StatusBadRequest, errmsg)
		return
	}

	self.mut.Lock()
	reply, err := self.session.Step(r.Context(), packet)
	self.mut.Unlock()
	if nil != err {
		errmsg := "session error"
		log.Error(errmsg, "error", err)
		writeError(w, http.StatusInternalServerError, errmsg)
		return
	}

	w.Header().Set("Content-Type", packetContentType)
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(reply)
	if nil != err {
		log.Error("failed meanwhile delivering the HTTP response", "error", err)
	}
}

func (self *HttpHandler) serveStatus(w http.ResponseWriter, r *http.Request) {
	self.mut.Lock()
	status := self.session.Core().Status()
	self.mut.Unlock()

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(status)
	if nil != err {
		observability.GetObservability(r.Context()).Log().Error("failed writing status", "error", err)
	}
}

// writeError writes an error HTTP response to w.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Add("Content-Type", "text/plain")
	w.WriteHeader(status)
	io.WriteString(w, msg)
}
