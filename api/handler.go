package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"qlab/queue"
	"qlab/store"
)

const DefaultBufSize = 1024

type ErrorResponse struct {
	HttpStatusCode int
	Message        string
}

type CreateRequest struct {
	Name string `json:"name"`
}

type ValueRequest struct {
	Value string `json:"value"`
}

type QueueResponse struct {
	Name      string           `json:"name"`
	Size      int              `json:"size"`
	Traversal *queue.Traversal `json:"traversal,omitempty"`
}

type RemoveResponse struct {
	Name string `json:"name"`
	// Value is omitted when the caller asked for no buffer.
	Value *string `json:"value,omitempty"`
	Size  int     `json:"size"`
}

type ListResponse struct {
	Queues []string `json:"queues"`
}

func (a *Api) log(r *http.Request) *logrus.Entry {
	return a.Logger.WithFields(logrus.Fields{
		"request_id": middleware.GetReqID(r.Context()),
		"method":     r.Method,
		"path":       r.URL.Path,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (a *Api) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, queue.ErrEmpty):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrExists):
		status = http.StatusConflict
	case errors.Is(err, queue.ErrNoMemory):
		status = http.StatusInsufficientStorage
	case errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	}

	a.log(r).WithField("status", status).Warn(err)
	writeJSON(w, status, ErrorResponse{HttpStatusCode: status, Message: err.Error()})
}

var errBadRequest = errors.New("bad request")

func decode(r *http.Request, v any) error {
	d := json.NewDecoder(r.Body)
	d.DisallowUnknownFields()

	if err := d.Decode(v); err != nil {
		return errors.Wrapf(errBadRequest, "error unmarshalling body: %v", err)
	}
	return nil
}

func (a *Api) CreateQueueHandler(w http.ResponseWriter, r *http.Request) {
	req := CreateRequest{}
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	if req.Name == "" {
		a.writeError(w, r, errors.Wrap(errBadRequest, "queue name is required"))
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	q, err := a.newQueue()
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.Store.Put(req.Name, q); err != nil {
		if ferr := q.Free(); ferr != nil {
			a.log(r).WithField("queue", req.Name).Errorf("free queue: %v", ferr)
		}
		a.writeError(w, r, err)
		return
	}

	a.log(r).WithField("queue", req.Name).Info("queue created")
	writeJSON(w, http.StatusCreated, QueueResponse{Name: req.Name, Size: 0})
}

func (a *Api) ListQueuesHandler(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	names, err := a.Store.List()
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Queues: names})
}

func (a *Api) GetQueueHandler(w http.ResponseWriter, r *http.Request) {
	a.withQueue(w, r, func(name string, q *queue.Queue) {
		tr := q.Traverse()
		writeJSON(w, http.StatusOK, QueueResponse{Name: name, Size: q.Size(), Traversal: &tr})
	})
}

func (a *Api) FreeQueueHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	a.mu.Lock()
	defer a.mu.Unlock()

	q, err := a.Store.Delete(name)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := q.Free(); err != nil {
		a.writeError(w, r, err)
		return
	}

	a.log(r).WithField("queue", name).Info("queue freed")
	w.WriteHeader(http.StatusNoContent)
}

func (a *Api) InsertHeadHandler(w http.ResponseWriter, r *http.Request) {
	a.insert(w, r, (*queue.Queue).InsertHead)
}

func (a *Api) InsertTailHandler(w http.ResponseWriter, r *http.Request) {
	a.insert(w, r, (*queue.Queue).InsertTail)
}

func (a *Api) insert(w http.ResponseWriter, r *http.Request, insert func(*queue.Queue, string) error) {
	req := ValueRequest{}
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	a.withQueue(w, r, func(name string, q *queue.Queue) {
		if err := insert(q, req.Value); err != nil {
			a.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, QueueResponse{Name: name, Size: q.Size()})
	})
}

// RemoveHeadHandler removes the head value. The bufsize query parameter
// bounds the returned value the way a fixed buffer would; bufsize=0
// discards it. The buffer never exceeds the head value plus terminator,
// so a large bufsize costs nothing.
func (a *Api) RemoveHeadHandler(w http.ResponseWriter, r *http.Request) {
	bufSize := DefaultBufSize
	if v := r.URL.Query().Get("bufsize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			a.writeError(w, r, errors.Wrapf(errBadRequest, "invalid bufsize %q", v))
			return
		}
		bufSize = n
	}

	a.withQueue(w, r, func(name string, q *queue.Queue) {
		var buf []byte
		if bufSize > 0 {
			buf = make([]byte, min(bufSize, q.HeadLen()+1))
		}
		if err := q.RemoveHead(buf); err != nil {
			a.writeError(w, r, err)
			return
		}

		resp := RemoveResponse{Name: name, Size: q.Size()}
		if buf != nil {
			value := queue.String(buf)
			resp.Value = &value
		}
		writeJSON(w, http.StatusOK, resp)
	})
}

func (a *Api) SizeHandler(w http.ResponseWriter, r *http.Request) {
	a.withQueue(w, r, func(name string, q *queue.Queue) {
		writeJSON(w, http.StatusOK, QueueResponse{Name: name, Size: q.Size()})
	})
}

func (a *Api) ReverseHandler(w http.ResponseWriter, r *http.Request) {
	a.withQueue(w, r, func(name string, q *queue.Queue) {
		q.Reverse()
		tr := q.Traverse()
		writeJSON(w, http.StatusOK, QueueResponse{Name: name, Size: q.Size(), Traversal: &tr})
	})
}

// withQueue looks up the queue named in the URL and runs fn with the
// lock held.
func (a *Api) withQueue(w http.ResponseWriter, r *http.Request, fn func(name string, q *queue.Queue)) {
	name := chi.URLParam(r, "name")

	a.mu.Lock()
	defer a.mu.Unlock()

	q, err := a.Store.Get(name)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	fn(name, q)
}
