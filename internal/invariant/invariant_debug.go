//go:build hspdebug

package invariant

import (
	"fmt"
	"sync"
)

var (
	liveMu sync.Mutex
	live   = map[uintptr]int{} // live handle count per word
)

func markCreated(word uintptr) {
	if word == 0 {
		return
	}
	liveMu.Lock()
	live[word]++
	liveMu.Unlock()
}

func markDestroyed(word uintptr) {
	if word == 0 {
		return
	}
	liveMu.Lock()
	defer liveMu.Unlock()
	if live[word] == 0 {
		panic(fmt.Sprintf("hsp: double destroy detected for handle word %#x", word))
	}
	if live[word]--; live[word] == 0 {
		delete(live, word)
	}
}
