package systems

import (
	"runtime"
	"sync"
)

// workChunk is a contiguous particle range and the index of the RNG
// stream that owns it.
type workChunk struct {
	start, end int
	stream     int
}

// workerPool runs chunks on persistent goroutines.
type workerPool struct {
	numWorkers int
	run        func(workChunk)

	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup
	running  bool
}

func newWorkerPool(numWorkers int, run func(workChunk)) *workerPool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	return &workerPool{
		numWorkers: numWorkers,
		run:        run,
	}
}

// start launches the worker goroutines.
func (p *workerPool) start() {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stop signals all workers to exit and waits for them.
func (p *workerPool) stop() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

func (p *workerPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			p.run(chunk)
			p.doneChan <- struct{}{}
		}
	}
}

// dispatch splits [0, n) into one chunk per worker and blocks until all
// chunks complete. Chunk w always uses stream w, so results do not depend
// on which goroutine picks it up.
func (p *workerPool) dispatch(n int) {
	if !p.running {
		p.start()
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}

		p.workChan <- workChunk{start: start, end: end, stream: w}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
}
