package databuf_test

import (
	"github.com/scenewire/scenewire/databuf"
	"github.com/scenewire/scenewire/wire"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Buffer", func() {
	It("borrows a strided array and exposes only the declared components", func() {
		// interleaved (x,y,z,w) but the buffer only cares about the first 3
		data := []float32{1, 2, 3, 99, 4, 5, 6, 99}
		b, err := databuf.Borrow(data, 3, 4)
		Expect(err).ToNot(HaveOccurred())
		Expect(b.ElementCount()).To(Equal(2))

		v, ok := b.AtFloat64(1, 2)
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(6.0))
	})

	It("rejects a stride smaller than the component count", func() {
		_, err := databuf.Borrow([]float32{1, 2, 3}, 3, 2)
		Expect(err).To(Equal(databuf.ErrInvalidComponents))
	})

	It("duplicate densely packs a strided buffer", func() {
		data := []int32{1, 2, 3, 99, 4, 5, 6, 99}
		b, _ := databuf.Borrow(data, 3, 4)
		dup := b.Duplicate()
		Expect(dup.Owned()).To(BeTrue())
		Expect(dup.Stride()).To(Equal(3))
		v, _ := dup.AtInt64(1, 0)
		Expect(v).To(Equal(int64(4)))
	})

	It("round-trips a raw chunk through a packet", func() {
		verts := []float32{1, 2, 3, 4, 5, 6}
		b, _ := databuf.BorrowVec(verts, 3)

		w := wire.NewWriter()
		w.Reset(wire.RoutingMesh, 3)
		n, err := b.WriteChunk(w, 0, 1<<20)
		Expect(err).ToNot(HaveOccurred())
		Expect(n).To(Equal(2))
		Expect(w.Finalise()).To(Succeed())

		r, err := wire.ParsePacket(w.PacketBytes())
		Expect(err).ToNot(HaveOccurred())

		dest, _ := databuf.BorrowVec(make([]float32, 6), 3)
		got, err := databuf.ReadChunk(r, dest)
		Expect(err).ToNot(HaveOccurred())
		Expect(got).To(Equal(2))
		v, _ := dest.AtFloat64(1, 2)
		Expect(v).To(Equal(6.0))
	})

	It("tiles a large buffer across multiple chunks without overlap", func() {
		const n = 80_000
		data := make([]float32, n*3)
		for i := range data {
			data[i] = float32(i)
		}
		b, _ := databuf.BorrowVec(data, 3)

		w := wire.NewWriter()
		offset := 0
		chunks := 0
		for offset < n {
			w.Reset(wire.RoutingMesh, 3)
			count, err := b.WriteChunk(w, offset, 4096)
			Expect(err).ToNot(HaveOccurred())
			Expect(count).To(BeNumerically(">", 0))
			offset += count
			chunks++
		}
		Expect(chunks).To(BeNumerically(">=", 2))
		Expect(offset).To(Equal(n))
	})
})

var _ = Describe("quantized packing", func() {
	It("round-trips within one quantisation unit", func() {
		data := []float32{10, -10, 0.003}
		b, _ := databuf.BorrowVec(data, 3)

		w := wire.NewWriter()
		w.Reset(wire.RoutingMesh, 3)
		q := databuf.QuantisedTarget{
			Type:   databuf.PackedFloat16,
			Origin: []float64{-100, -100, -100},
			Unit:   0.005,
		}
		n, err := b.WriteChunkQuantized(w, 0, 1<<20, q)
		Expect(err).ToNot(HaveOccurred())
		Expect(n).To(Equal(1))
		Expect(w.Finalise()).To(Succeed())

		r, _ := wire.ParsePacket(w.PacketBytes())
		dest, _ := databuf.BorrowVec(make([]float32, 3), 3)
		_, err = databuf.ReadChunk(r, dest)
		Expect(err).ToNot(HaveOccurred())

		for c := 0; c < 3; c++ {
			got, _ := dest.AtFloat64(0, c)
			Expect(got).To(BeNumerically("~", float64(data[c]), 0.005))
		}
	})

	It("fails with QuantisationOverflow instead of silently clamping", func() {
		data := []float32{10_000}
		b, _ := databuf.BorrowVec(data, 1)
		w := wire.NewWriter()
		w.Reset(wire.RoutingMesh, 3)
		q := databuf.QuantisedTarget{
			Type:   databuf.PackedFloat16,
			Origin: []float64{-100},
			Unit:   0.005,
		}
		_, err := b.WriteChunkQuantized(w, 0, 1<<20, q)
		Expect(err).To(Equal(databuf.ErrQuantisationOverflow))
		Expect(w.Len()).To(Equal(0), "a failed quantized write must not touch the packet")
	})

	It("rejects packing a non-float buffer", func() {
		b, _ := databuf.BorrowVec([]int32{1, 2, 3}, 3)
		w := wire.NewWriter()
		w.Reset(wire.RoutingMesh, 3)
		_, err := b.WriteChunkQuantized(w, 0, 1<<20, databuf.QuantisedTarget{
			Type: databuf.PackedFloat16, Origin: []float64{0, 0, 0}, Unit: 1,
		})
		Expect(err).To(Equal(databuf.ErrNotFloat))
	})
})
