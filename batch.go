package ember

// ProgramKind selects which shader program a batch is drawn with. The
// backend compiles one program per kind for the negotiated rendering path.
type ProgramKind uint8

const (
	// ProgramSolid renders untextured, tinted quads.
	ProgramSolid ProgramKind = iota
	// ProgramTextured renders quads sampling an RGBA texture.
	ProgramTextured
	// ProgramText renders glyph quads sampling a coverage-only atlas page.
	ProgramText

	// ProgramCount is the number of shader program kinds.
	ProgramCount
)

// Batch is an ordered, non-empty run of instances sharing a shader program
// and a bound texture. A batch never mixes programs or textures, and the
// submission order of its instances is preserved.
type Batch struct {
	Program   ProgramKind
	Texture   TextureID // Zero for ProgramSolid
	Instances []Instance
}

// DrawQueue accumulates the frame's ordered sequence of batches. It is
// cleared after each flush; the backing slices keep their capacity so a
// steady-state frame allocates nothing.
//
// Batching is a single greedy forward pass: a submission merges into the
// current batch when it shares the batch's (program, texture) state, and
// any state change finalizes the current batch and starts a new one. The
// queue never sorts or reorders submissions, because reordering would
// change the visible stacking of overlapping quads.
type DrawQueue struct {
	Batches   []Batch
	instances int
}

// Push appends an instance, merging it into the current batch when the
// program and texture match, and opening a new batch otherwise.
func (q *DrawQueue) Push(program ProgramKind, texture TextureID, inst Instance) {
	n := len(q.Batches)
	if n > 0 {
		last := &q.Batches[n-1]
		if last.Program == program && last.Texture == texture {
			last.Instances = append(last.Instances, inst)
			q.instances++
			return
		}
	}
	q.Batches = append(q.Batches, Batch{
		Program:   program,
		Texture:   texture,
		Instances: append(make([]Instance, 0, 16), inst),
	})
	q.instances++
}

// Len returns the total number of instances queued across all batches.
func (q *DrawQueue) Len() int {
	return q.instances
}

// BatchCount returns the number of batches in the queue.
func (q *DrawQueue) BatchCount() int {
	return len(q.Batches)
}

// Reset clears the queue for reuse, retaining allocated capacity.
func (q *DrawQueue) Reset() {
	q.Batches = q.Batches[:0]
	q.instances = 0
}
