package ember

import "testing"

func TestPushMergesMatchingState(t *testing.T) {
	var q DrawQueue
	q.Push(ProgramTextured, 7, Instance{})
	q.Push(ProgramTextured, 7, Instance{})
	q.Push(ProgramTextured, 7, Instance{})

	if q.BatchCount() != 1 {
		t.Fatalf("BatchCount = %d, want 1", q.BatchCount())
	}
	if q.Len() != 3 {
		t.Errorf("Len = %d, want 3", q.Len())
	}
	if got := len(q.Batches[0].Instances); got != 3 {
		t.Errorf("batch instance count = %d, want 3", got)
	}
}

func TestPushSplitsOnStateChange(t *testing.T) {
	var q DrawQueue
	q.Push(ProgramSolid, 0, Instance{})
	q.Push(ProgramTextured, 1, Instance{})
	q.Push(ProgramTextured, 1, Instance{})
	q.Push(ProgramTextured, 2, Instance{})
	q.Push(ProgramTextured, 1, Instance{})

	want := []struct {
		program ProgramKind
		texture TextureID
		count   int
	}{
		{ProgramSolid, 0, 1},
		{ProgramTextured, 1, 2},
		{ProgramTextured, 2, 1},
		{ProgramTextured, 1, 1},
	}
	if q.BatchCount() != len(want) {
		t.Fatalf("BatchCount = %d, want %d", q.BatchCount(), len(want))
	}
	for i, w := range want {
		b := q.Batches[i]
		if b.Program != w.program || b.Texture != w.texture || len(b.Instances) != w.count {
			t.Errorf("batch %d = (%v, %d, %d instances), want (%v, %d, %d)",
				i, b.Program, b.Texture, len(b.Instances), w.program, w.texture, w.count)
		}
	}
}

func TestPushNeverReorders(t *testing.T) {
	// Alternating textures produce one batch each even though grouping by
	// texture would halve the count. Reordering would change stacking.
	var q DrawQueue
	for i := 0; i < 6; i++ {
		q.Push(ProgramTextured, TextureID(1+i%2), Instance{Depth: float32(i)})
	}
	if q.BatchCount() != 6 {
		t.Fatalf("BatchCount = %d, want 6", q.BatchCount())
	}
	for i, b := range q.Batches {
		if b.Instances[0].Depth != float32(i) {
			t.Errorf("batch %d holds instance with depth %v, want %v", i, b.Instances[0].Depth, float32(i))
		}
	}
}

func TestProgramChangeSplitsSameTexture(t *testing.T) {
	var q DrawQueue
	q.Push(ProgramTextured, 3, Instance{})
	q.Push(ProgramText, 3, Instance{})
	if q.BatchCount() != 2 {
		t.Errorf("BatchCount = %d, want 2: programs must not mix", q.BatchCount())
	}
}

func TestReset(t *testing.T) {
	var q DrawQueue
	q.Push(ProgramSolid, 0, Instance{})
	q.Push(ProgramTextured, 1, Instance{})
	q.Reset()

	if q.Len() != 0 || q.BatchCount() != 0 {
		t.Errorf("after Reset: Len = %d, BatchCount = %d, want 0, 0", q.Len(), q.BatchCount())
	}

	q.Push(ProgramSolid, 0, Instance{})
	if q.Len() != 1 || q.BatchCount() != 1 {
		t.Errorf("queue unusable after Reset: Len = %d, BatchCount = %d", q.Len(), q.BatchCount())
	}
}
