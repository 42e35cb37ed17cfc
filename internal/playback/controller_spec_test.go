package playback

import (
	"context"
	"math/rand"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/san-kum/gridsearch/internal/grid"
	"github.com/san-kum/gridsearch/internal/logging"
)

var _ = ginkgo.Describe("Controller", func() {
	var (
		cells []grid.Coordinate
		sink  *recordingSink
		c     *Controller
	)

	tick := func(n int) {
		for i := 0; i < n; i++ {
			gomega.Expect(c.Tick()).To(gomega.Succeed())
		}
	}

	ginkgo.BeforeEach(func() {
		cells = row(5)
		sink = newRecordingSink()
		var err error
		c, err = New(context.Background(), graphConfig(5, 1), sink, Options{
			Algorithm:   &scriptedAlgorithm{cells: cells},
			Rand:        rand.New(rand.NewSource(3)),
			JoinTimeout: 5 * time.Second,
			Logger:      logging.Discard(),
		})
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		ginkgo.DeferCleanup(c.Close)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		gomega.Expect(c.WaitTrace(ctx)).To(gomega.Succeed())
	})

	ginkgo.Context("when playing forward", func() {
		ginkgo.BeforeEach(func() {
			gomega.Expect(c.Submit(PlayForward())).To(gomega.Succeed())
		})

		ginkgo.It("advances one cell per tick", func() {
			tick(2)
			gomega.Expect(c.Status().Cursor).To(gomega.Equal(2))
			gomega.Expect(sink.colourOf(cells[0])).To(gomega.Equal(Explored))
			gomega.Expect(sink.colourOf(cells[1])).To(gomega.Equal(Frontier))
			gomega.Expect(c.Status().State).To(gomega.Equal(PlayingForward))
		})

		ginkgo.It("holds on the last cell once the trace is complete", func() {
			tick(len(cells) + 1)
			gomega.Expect(c.Status().State).To(gomega.Equal(Paused))
			gomega.Expect(c.Status().Cursor).To(gomega.Equal(len(cells)))
			gomega.Expect(sink.colourOf(cells[len(cells)-1])).To(gomega.Equal(Frontier))
		})

		ginkgo.It("stops when paused", func() {
			tick(1)
			gomega.Expect(c.Submit(Pause())).To(gomega.Succeed())
			tick(3)
			gomega.Expect(c.Status().Cursor).To(gomega.Equal(1))
		})
	})

	ginkgo.Context("when playing backward", func() {
		ginkgo.BeforeEach(func() {
			gomega.Expect(c.Submit(PlayForward())).To(gomega.Succeed())
			tick(3)
			gomega.Expect(c.Submit(PlayBackward())).To(gomega.Succeed())
		})

		ginkgo.It("reverts the cell being left", func() {
			tick(1)
			gomega.Expect(c.Status().Cursor).To(gomega.Equal(2))
			gomega.Expect(sink.colourOf(cells[2])).To(gomega.Equal(Unvisited))
			gomega.Expect(sink.colourOf(cells[1])).To(gomega.Equal(Frontier))
		})

		ginkgo.It("never hides the first cell", func() {
			tick(10)
			gomega.Expect(c.Status().Cursor).To(gomega.Equal(1))
			gomega.Expect(sink.colourOf(cells[0])).To(gomega.Equal(Frontier))
			gomega.Expect(c.Status().State).To(gomega.Equal(PlayingBackward))
		})
	})

	ginkgo.Context("with one-shot requests", func() {
		ginkgo.It("restarts without regenerating the trace", func() {
			start := c.Status().Start
			gomega.Expect(c.Submit(GoNext())).To(gomega.Succeed())
			gomega.Expect(c.Submit(Restart())).To(gomega.Succeed())
			tick(1)
			gomega.Expect(c.Status().Cursor).To(gomega.Equal(0))
			gomega.Expect(c.Status().Start).To(gomega.Equal(start))
			gomega.Expect(sink.snapshot()).To(gomega.BeEmpty())

			tick(1)
			gomega.Expect(c.Status().Cursor).To(gomega.Equal(1))
		})

		ginkgo.It("lets reset win over restart", func() {
			clears := sink.clears
			gomega.Expect(c.Submit(Restart())).To(gomega.Succeed())
			gomega.Expect(c.Submit(Reset())).To(gomega.Succeed())
			tick(2)
			gomega.Expect(sink.clears).To(gomega.Equal(clears + 2))
			gomega.Expect(c.Status().State).To(gomega.Equal(Paused))
		})
	})
})
