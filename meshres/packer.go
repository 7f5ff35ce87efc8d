package meshres

import (
	"errors"

	"github.com/scenewire/scenewire/databuf"
	"github.com/scenewire/scenewire/wire"
)

// Resource is everything the packer needs to stream one mesh resource:
// the Create message fields and the optional per-channel buffers. A nil
// buffer means that channel is skipped entirely (spec.md §4.6 lists
// VertexColour/Normal/UV as optional).
type Resource struct {
	ID            uint32
	Create        Create
	Vertices      *databuf.Buffer
	Indices       *databuf.Buffer
	Colours       *databuf.Buffer
	Normals       *databuf.Buffer
	UV            *databuf.Buffer
	FinaliseFlags uint16
}

type stage int

const (
	stageCreate stage = iota
	stageVertex
	stageIndex
	stageColour
	stageNormal
	stageUV
	stageFinalise
)

var ErrIdle = errors.New("meshres: packer has no resource bound")
var ErrBusy = errors.New("meshres: packer is already transferring a resource")

// Packer streams exactly one resource at a time across size-limited
// packets (spec.md §4.7).
type Packer struct {
	res           *Resource
	stage         stage
	offset        int
	lastCompleted uint32
	hasCompleted  bool
}

// Transfer binds res as the packer's current transfer. It fails with
// ErrBusy if a transfer is already in progress.
func (p *Packer) Transfer(res *Resource) error {
	if p.res != nil {
		return ErrBusy
	}
	p.res = res
	p.stage = stageCreate
	p.offset = 0
	return nil
}

// Idle reports whether the packer has no resource bound.
func (p *Packer) Idle() bool { return p.res == nil }

// Cancel drops the current resource mid-transfer, e.g. when a release
// races an in-flight send (spec.md §4.7).
func (p *Packer) Cancel() {
	p.res = nil
	p.stage = stageCreate
	p.offset = 0
}

// LastCompleted returns the most recently completed resource id and
// whether any transfer has completed yet.
func (p *Packer) LastCompleted() (uint32, bool) { return p.lastCompleted, p.hasCompleted }

// NextPacket emits the next slice of the bound resource into w, bounded by
// byteLimit or w's remaining capacity. It returns true while more packets
// remain; it returns false once the Finalise message for this resource has
// been written, at which point the packer records the completed id and
// becomes idle.
func (p *Packer) NextPacket(w *wire.Writer, byteLimit int) (more bool, err error) {
	if p.res == nil {
		return false, ErrIdle
	}
	for {
		switch p.stage {
		case stageCreate:
			if !p.res.Create.WriteCreate(w) {
				return false, wire.ErrTruncated
			}
			p.stage = stageVertex
			return true, nil

		case stageVertex:
			if p.res.Vertices == nil || p.offset >= p.res.Vertices.ElementCount() {
				p.stage, p.offset = stageIndex, 0
				continue
			}
			n, err := WriteVertexChunk(w, p.res.ID, p.res.Vertices, p.offset, byteLimit)
			if err != nil {
				return false, err
			}
			p.offset += n
			return true, nil

		case stageIndex:
			if p.res.Indices == nil || p.offset >= p.res.Indices.ElementCount() {
				p.stage, p.offset = stageColour, 0
				continue
			}
			n, err := WriteIndexChunk(w, p.res.ID, p.res.Indices, p.offset, byteLimit)
			if err != nil {
				return false, err
			}
			p.offset += n
			return true, nil

		case stageColour:
			if p.res.Colours == nil || p.offset >= p.res.Colours.ElementCount() {
				p.stage, p.offset = stageNormal, 0
				continue
			}
			n, err := WriteVertexColourChunk(w, p.res.ID, p.res.Colours, p.offset, byteLimit)
			if err != nil {
				return false, err
			}
			p.offset += n
			return true, nil

		case stageNormal:
			if p.res.Normals == nil || p.offset >= p.res.Normals.ElementCount() {
				p.stage, p.offset = stageUV, 0
				continue
			}
			n, err := WriteNormalChunk(w, p.res.ID, p.res.Normals, p.offset, byteLimit)
			if err != nil {
				return false, err
			}
			p.offset += n
			return true, nil

		case stageUV:
			if p.res.UV == nil || p.offset >= p.res.UV.ElementCount() {
				p.stage = stageFinalise
				continue
			}
			n, err := WriteUVChunk(w, p.res.ID, p.res.UV, p.offset, byteLimit)
			if err != nil {
				return false, err
			}
			p.offset += n
			return true, nil

		case stageFinalise:
			if !WriteFinalise(w, p.res.ID, p.res.FinaliseFlags) {
				return false, wire.ErrTruncated
			}
			p.lastCompleted, p.hasCompleted = p.res.ID, true
			p.res = nil
			p.stage, p.offset = stageCreate, 0
			return false, nil

		default:
			return false, ErrIdle
		}
	}
}
