// Profiling:
// go build ./profile/tables
// go tool pprof -http=":8000" -nodefraction=0.001 ./tables mem.pprof

package main

import (
	"github.com/edwinsyarief/ecscore"
	"github.com/pkg/profile"
)

type comp1 struct {
	V int64
	W int64
}

type comp2 struct {
	V int64
	W int64
}

func main() {
	rounds := 50
	iters := 10000
	numEntities := 1000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(rounds, iters, numEntities)
	p.Stop()
}

func run(rounds, iters, numEntities int) {
	for range rounds {
		alloc := ecscore.NewAllocator()
		dense := ecscore.NewDenseTable[comp1]()
		stable := ecscore.NewStableTable[comp2]()

		for range iters {
			r := alloc.AddRange(uint32(numEntities))
			dense.AddRange(r, comp1{})
			stable.AddRange(r, comp2{})

			dense.Iter(func(c *comp1) bool {
				c.V++
				return true
			})
			stable.Iter(func(c *comp2) bool {
				c.V++
				return true
			})

			dense.RemoveRange(r)
			stable.RemoveRange(r)
			stable.Pack()
			alloc.RemoveRange(r)
		}
	}
}
