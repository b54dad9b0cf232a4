package prioritizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/autotestx/prioritizer/internal/metric"
	"github.com/autotestx/prioritizer/internal/model"
	"github.com/autotestx/prioritizer/internal/priority"
	"github.com/autotestx/prioritizer/internal/validate"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) router() http.Handler {
	router := httprouter.New()

	router.GET("/", s.instrument("liveness", s.Liveness))
	router.POST("/prioritize", s.instrument("prioritize", s.Prioritize))
	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())

	router.PanicHandler = s.recoverPanic

	return s.logRequests(router)
}

// Liveness tells the caller that the service is running.
func (s *Server) Liveness(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	s.writeResponse(w, http.StatusOK, model.LivenessHTTP{Message: LivenessMessage})
}

// Prioritize accepts a json array of test records and returns them ordered
// by their risk score, highest first. If any record is invalid the request
// is rejected with 422.
func (s *Server) Prioritize(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			err = model.PayloadTooLargeError{Limit: maxBytesErr.Limit}
		}

		s.httpError(w, err)
		return
	}

	records, err := validate.Records(body)
	if err != nil {
		metric.ValidationFailures.Inc()
		s.httpError(w, err)
		return
	}

	sorted := priority.Sort(records)

	metric.RequestRecords.Observe(float64(len(sorted)))
	metric.RecordsPrioritized.Add(float64(len(sorted)))

	s.writeResponse(w, http.StatusOK, sorted)
}

func (s *Server) httpError(w http.ResponseWriter, err error) {
	var validationErr model.ValidationError
	var tooLargeErr model.PayloadTooLargeError

	if errors.As(err, &validationErr) {
		s.log.Debug("rejected invalid payload", "error", err)
		s.writeResponse(w, http.StatusUnprocessableEntity, model.ValidationErrorHTTP{Detail: validationErr.Details})
		return
	} else if errors.As(err, &tooLargeErr) {
		s.writeResponse(w, http.StatusRequestEntityTooLarge, model.ErrorHTTP{Error: tooLargeErr.Error()})
		return
	}

	s.log.Error("unable to handle request", "error", err)

	s.writeResponse(w, http.StatusInternalServerError, model.ErrorHTTP{Error: http.StatusText(http.StatusInternalServerError)})
}

func (s *Server) writeResponse(w http.ResponseWriter, status int, response any) {
	body, err := json.Marshal(response)
	if err != nil {
		s.log.Error("unable to marshal response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err = w.Write(body); err != nil {
		s.log.Warn("unable to write response body", "error", err)
	}
}

func (s *Server) recoverPanic(w http.ResponseWriter, r *http.Request, recovered any) {
	s.httpError(w, fmt.Errorf("panic while handling %s %s: %v", r.Method, r.URL.Path, recovered))
}

// instrument counts the requests of a route by response code.
func (s *Server) instrument(route string, h httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			status := rec.status

			// the router's PanicHandler writes the response after this
			// handler unwound, count it as the 500 it will become
			recovered := recover()
			if recovered != nil {
				status = http.StatusInternalServerError
			}

			metric.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()

			if recovered != nil {
				panic(recovered)
			}
		}()

		h(rec, r, p)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.log.Info("handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
