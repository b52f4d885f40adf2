package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"qlab/queue"
	"qlab/store"
)

// Api serves named queues over HTTP. Queues are not safe for concurrent
// use, so every handler holds mu while it touches the store or a queue.
type Api struct {
	Address string
	Port    int
	Logger  *logrus.Logger
	Store   store.Store[*queue.Queue]
	// Allocator, when set, is shared by every queue the Api creates.
	Allocator queue.Allocator
	// Verbose installs a logging tracer on every new queue.
	Verbose bool

	mu     sync.Mutex
	once   sync.Once
	router *chi.Mux
}

func (a *Api) initRouter() {
	if a.Logger == nil {
		a.Logger = logrus.StandardLogger()
	}
	if a.Store == nil {
		a.Store = store.NewInMemoryStore[*queue.Queue]()
	}

	a.router = chi.NewRouter()
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Recoverer)

	a.router.Route("/queues", func(r chi.Router) {
		r.Post("/", a.CreateQueueHandler)
		r.Get("/", a.ListQueuesHandler)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", a.GetQueueHandler)
			r.Delete("/", a.FreeQueueHandler)
			r.Post("/head", a.InsertHeadHandler)
			r.Delete("/head", a.RemoveHeadHandler)
			r.Post("/tail", a.InsertTailHandler)
			r.Get("/size", a.SizeHandler)
			r.Post("/reverse", a.ReverseHandler)
		})
	})
}

// Router returns the HTTP handler, building it on first use.
func (a *Api) Router() http.Handler {
	a.once.Do(a.initRouter)
	return a.router
}

// Start serves until ctx is done, then shuts the server down.
func (a *Api) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.Address, a.Port),
		Handler:           a.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	a.Logger.Infof("queue api listening on %s", srv.Addr)
	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		a.Logger.Info("queue api shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		a.freeAll()
		return err
	case err := <-srvErr:
		a.freeAll()
		return err
	}
}

// freeAll releases every queue still held by the store.
func (a *Api) freeAll() {
	a.mu.Lock()
	defer a.mu.Unlock()

	names, _ := a.Store.List()
	for _, name := range names {
		q, err := a.Store.Delete(name)
		if err != nil {
			continue
		}
		if err := q.Free(); err != nil {
			a.Logger.WithField("queue", name).Errorf("free queue: %v", err)
		}
	}
}

func (a *Api) newQueue() (*queue.Queue, error) {
	var opts []queue.Option
	if a.Allocator != nil {
		opts = append(opts, queue.WithAllocator(a.Allocator))
	}
	if a.Verbose {
		opts = append(opts, queue.WithTracer(queue.LogTracer{Logger: a.Logger}))
	}
	return queue.New(opts...)
}
