package worker

// Job is one unit of work handed to a worker.
type Job func()

type Worker struct {
	id         int
	jobChannel <-chan Job
	quit       chan struct{}
	done       chan struct{}
}

func NewWorker(id int, jobs <-chan Job) *Worker {
	return &Worker{
		id:         id,
		jobChannel: jobs,
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (w *Worker) Start() {
	go func() {
		defer close(w.done)
		for {
			select {
			case job := <-w.jobChannel:
				debugLog("[worker-%d] run job", w.id)
				job()
			case <-w.quit:
				return
			}
		}
	}()
}

// Stop asks the worker to exit and waits until its current job returns.
func (w *Worker) Stop() {
	close(w.quit)
	<-w.done
}
