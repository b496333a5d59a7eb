package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/mesh"
	"github.com/san-kum/softsim/internal/physics"
)

func TestLifecycle(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Lifecycle Suite")
}

func newDropManager(cfg Config) *Manager {
	m := New(cfg)
	sc, err := m.CreateScene("drop", true)
	Expect(err).NotTo(HaveOccurred())

	floor, err := mesh.Build(mesh.Quad(0, 0, 1, 0), mesh.BuildOptions{})
	Expect(err).NotTo(HaveOccurred())
	_, err = sc.AddObject("floor", floor, physics.DefaultImmovable())
	Expect(err).NotTo(HaveOccurred())

	tet, err := mesh.Build(mesh.Tetrahedron(mgl64.Vec3{-0.25, -0.25, 0.5}, 0.5), mesh.BuildOptions{Deformable: true})
	Expect(err).NotTo(HaveOccurred())
	def := physics.DefaultDeformable()
	def.Dt = 0.01
	_, err = sc.AddObject("tet", tet, def)
	Expect(err).NotTo(HaveOccurred())
	Expect(sc.AddCollisionInteraction("floor", "tet", 0)).To(Succeed())
	return m
}

var _ = Describe("Manager lifecycle", func() {
	var m *Manager

	BeforeEach(func() {
		m = newDropManager(Config{})
	})

	AfterEach(func() {
		if s := m.State(); s == Running || s == Paused {
			Expect(m.Stop()).To(Succeed())
		}
	})

	It("starts Idle", func() {
		Expect(m.State()).To(Equal(Idle))
	})

	DescribeTable("rejects transitions before start",
		func(transition func(*Manager) error) {
			err := transition(m)
			Expect(errors.Is(err, dynamo.ErrLifecycle)).To(BeTrue())
			var le *LifecycleError
			Expect(errors.As(err, &le)).To(BeTrue())
			Expect(le.From).To(Equal(Idle))
			Expect(m.State()).To(Equal(Idle))
		},
		Entry("stop", (*Manager).Stop),
		Entry("pause", (*Manager).Pause),
		Entry("resume", (*Manager).Resume),
		Entry("reset", (*Manager).Reset),
	)

	It("runs start, pause, resume, stop", func() {
		Expect(m.Start(context.Background())).To(Succeed())
		Expect(m.State()).To(Equal(Running))
		Eventually(m.Steps).Should(BeNumerically(">", 0))

		Expect(m.Pause()).To(Succeed())
		Expect(m.State()).To(Equal(Paused))
		frozen := m.Steps()
		Consistently(m.Steps, 50*time.Millisecond).Should(Equal(frozen))

		pts, err := m.GetDeformedPositions("tet")
		Expect(err).NotTo(HaveOccurred())
		Expect(pts).To(HaveLen(4))

		Expect(m.Resume()).To(Succeed())
		Expect(m.State()).To(Equal(Running))
		Eventually(m.Steps).Should(BeNumerically(">", frozen))

		Expect(m.Stop()).To(Succeed())
		Expect(m.State()).To(Equal(Stopped))
		Expect(m.Done()).To(BeClosed())
		Expect(m.Err()).NotTo(HaveOccurred())
	})

	It("stops from Paused", func() {
		Expect(m.Start(context.Background())).To(Succeed())
		Expect(m.Pause()).To(Succeed())
		Expect(m.Stop()).To(Succeed())
		Expect(m.State()).To(Equal(Stopped))
	})

	It("keeps the last positions readable after stop", func() {
		Expect(m.Start(context.Background())).To(Succeed())
		Eventually(m.Steps).Should(BeNumerically(">", 5))
		Expect(m.Stop()).To(Succeed())

		n := m.Steps()
		pts, err := m.GetDeformedPositions("tet")
		Expect(err).NotTo(HaveOccurred())
		Expect(pts).To(HaveLen(4))
		Consistently(m.Steps, 20*time.Millisecond).Should(Equal(n))
	})

	It("rejects a second start and a resume while running", func() {
		Expect(m.Start(context.Background())).To(Succeed())
		Expect(m.Start(context.Background())).To(MatchError(dynamo.ErrLifecycle))
		Expect(m.Resume()).To(MatchError(dynamo.ErrLifecycle))
		Expect(m.State()).To(Equal(Running))
	})

	It("treats Stopped as terminal until Reset", func() {
		Expect(m.Start(context.Background())).To(Succeed())
		Expect(m.Stop()).To(Succeed())

		Expect(m.Start(context.Background())).To(MatchError(dynamo.ErrLifecycle))
		Expect(m.Pause()).To(MatchError(dynamo.ErrLifecycle))
		Expect(m.Stop()).To(MatchError(dynamo.ErrLifecycle))

		Expect(m.Reset()).To(Succeed())
		Expect(m.State()).To(Equal(Idle))
		_, err := m.ActiveScene()
		Expect(err).To(MatchError(dynamo.ErrUnknownScene))
		Expect(m.Start(context.Background())).To(MatchError(dynamo.ErrUnknownScene))
	})

	It("stops when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		Expect(m.Start(ctx)).To(Succeed())
		cancel()
		Eventually(m.Done()).Should(BeClosed())
		Expect(m.State()).To(Equal(Stopped))
	})

	It("stops by itself after MaxSteps", func() {
		m = newDropManager(Config{MaxSteps: 100})
		Expect(m.Start(context.Background())).To(Succeed())
		Eventually(m.Done(), 5*time.Second).Should(BeClosed())
		Expect(m.State()).To(Equal(Stopped))
		Expect(m.Steps()).To(Equal(uint64(100)))

		tet, err := m.GetDeformedPositions("tet")
		Expect(err).NotTo(HaveOccurred())
		Expect(dynamo.Points(tet).Min(2)).To(BeNumerically(">=", 0-physics.DefaultProximity))
	})

	It("rejects switching the active scene while running", func() {
		_, err := m.CreateScene("other", false)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Start(context.Background())).To(Succeed())

		Expect(m.SetActiveScene("other", true)).To(MatchError(dynamo.ErrLifecycle))
		Expect(m.UnloadScene("drop")).To(MatchError(dynamo.ErrLifecycle))
		Expect(m.UnloadScene("other")).To(Succeed())
	})
})
