// Package async runs functions on goroutines and collects their results
// through channels.
package async

// Promise runs f on a new goroutine and delivers its result on the returned channel.
func Promise[R any](f func() R) <-chan R {
	out := make(chan R, 1)
	go func() {
		out <- f()
	}()
	return out
}

// GatherN waits for every channel in order and returns the results in the same order.
func GatherN[R any](cs ...<-chan R) <-chan []R {
	return Promise(func() []R {
		results := make([]R, len(cs))
		for i, c := range cs {
			results[i] = <-c
		}
		return results
	})
}

// Split runs f once per contiguous chunk of [0, n) on up to workers goroutines
// and returns the per-chunk results in chunk order.
func Split[R any](n, workers int, f func(lo, hi int) R) []R {
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = max(n, 1)
	}
	chunk := (n + workers - 1) / workers
	promises := make([]<-chan R, 0, workers)
	for lo := 0; lo < n || len(promises) == 0; lo += chunk {
		lo, hi := lo, min(lo+chunk, n)
		promises = append(promises, Promise(func() R {
			return f(lo, hi)
		}))
		if chunk == 0 {
			break
		}
	}
	return <-GatherN(promises...)
}
