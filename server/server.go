package main

import (
	"flag"
	"io/ioutil"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	queuemanager "github.com/sttelite/queue-manager"
)

const (
	// base HTTP paths.
	apiVersion  = "v1"
	apiBasePath = "/api/" + apiVersion + "/"

	// path to queues.
	queuePath = apiBasePath + "queue/"
)

var (
	port    int
	logfile string
	verbose bool

	// manager-specific state. Queue handles are only meaningful inside the
	// process, so clients address queues by server-issued ids.
	manager *queuemanager.Manager
	queues  = map[string]queuemanager.Handle{}
	nextID  int
)

func init() {
	flag.BoolVar(&verbose, "v", false, "Verbose logging.")
	flag.IntVar(&port, "port", 9090, "The port to listen on.")
	flag.StringVar(&logfile, "logfile", "", "Location of the logfile.")
}

func main() {
	flag.Parse()

	var logger *log.Logger

	if logfile == "" {
		logger = log.New(os.Stdout, "", log.LstdFlags)
	} else {
		f, err := os.OpenFile(logfile, os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			panic(err)
		}
		logger = log.New(f, "", log.LstdFlags)
	}

	manager = queuemanager.NewManager(queuemanager.Config{
		Verbose: verbose,
		Logger:  logger,
	})

	logger.Print("queue manager initialised.")

	// let the middleware log and translate faults.
	http.Handle(queuePath, serviceLoader(queueIndexHandler(), faultBoundary(), requestMetrics(logger)))

	logger.Printf("starting server on :%d", port)

	strPort := ":" + strconv.Itoa(port)
	log.Fatal("ListenAndServe: ", http.ListenAndServe(strPort, nil))
}

// our base middleware implementation.
type service func(http.Handler) http.Handler

// chain load middleware services.
func serviceLoader(h http.Handler, svcs ...service) http.Handler {
	for _, svc := range svcs {
		h = svc(h)
	}
	return h
}

func queueIndexHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			createQueueHandler(w, r)
		case http.MethodDelete:
			destroyQueueHandler(w, r)
		case http.MethodPut:
			enqueueHandler(w, r)
		case http.MethodGet:
			dequeueHandler(w, r)
		}
	})
}

// middleware for request length metrics.
func requestMetrics(l *log.Logger) service {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			h.ServeHTTP(w, r)
			l.Printf("request took %vns.", time.Now().Sub(start).Nanoseconds())
		})
	}
}

// middleware translating manager faults into HTTP statuses. The manager's
// fault panics never return to the operation, so the handler boundary is the
// only place they can become a response.
func faultBoundary() service {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				switch recover() {
				case nil:
				case queuemanager.ErrOutOfMemory:
					w.WriteHeader(http.StatusInsufficientStorage)
				case queuemanager.ErrIllegalOperation:
					w.WriteHeader(http.StatusUnprocessableEntity)
				default:
					w.WriteHeader(http.StatusInternalServerError)
				}
			}()
			h.ServeHTTP(w, r)
		})
	}
}

// handles post requests.
func createQueueHandler(w http.ResponseWriter, r *http.Request) {
	if target := r.URL.Path[len(queuePath):]; target != "" {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("queue ids are assigned by the server."))
		return
	}

	id := strconv.Itoa(nextID)
	queues[id] = manager.CreateQueue()
	nextID++

	log.Printf("created queue %q.", id)
	w.WriteHeader(http.StatusCreated)
	w.Write([]byte(id))
}

// handles delete requests.
func destroyQueueHandler(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Path[len(queuePath):]
	q, found := lookupQueue(w, target)
	if !found {
		return
	}

	manager.DestroyQueue(q)
	delete(queues, target)
	log.Printf("destroyed queue %q.", target)
}

// handles put requests.
func enqueueHandler(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Path[len(queuePath):]
	q, found := lookupQueue(w, target)
	if !found {
		return
	}

	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		log.Print(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	for _, b := range body {
		manager.EnqueueByte(q, b)
	}
	log.Printf("enqueued %d bytes to queue %q.", len(body), target)
	w.WriteHeader(http.StatusCreated)
}

// handles get requests.
func dequeueHandler(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Path[len(queuePath):]
	q, found := lookupQueue(w, target)
	if !found {
		return
	}

	n := 1
	if param := r.URL.Query().Get("n"); param != "" {
		parsed, err := strconv.Atoi(param)
		if err != nil || parsed < 1 {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("n must be a positive integer."))
			return
		}
		n = parsed
	}

	// dequeue fully before writing, so a fault cannot cut a response short.
	body := make([]byte, n)
	for i := range body {
		body[i] = manager.DequeueByte(q)
	}
	w.Write(body)
}

func lookupQueue(w http.ResponseWriter, target string) (queuemanager.Handle, bool) {
	if target == "" {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("can't address a queue if there is no queue id."))
		log.Print("empty request.")
		return queuemanager.Handle{}, false
	}

	q, ok := queues[target]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return queuemanager.Handle{}, false
	}
	return q, true
}
