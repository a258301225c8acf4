package scene

// ObjectState is the pose of one game object after a frame.
type ObjectState struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Position [3]float64 `json:"position"`
	Rotation [4]float64 `json:"rotation"`
}

type Snapshot struct {
	Frame   uint64        `json:"frame"`
	Time    float64       `json:"time"`
	Objects []ObjectState `json:"objects"`
}

// Snapshot captures every live Transform. Call it between frames.
func (s *Scene) Snapshot() Snapshot {
	snap := Snapshot{Frame: s.frame, Time: s.elapsed}
	for _, g := range s.objects {
		if g.IsDestroyed() {
			continue
		}
		tr := g.Transform()
		q := tr.Rotation()
		snap.Objects = append(snap.Objects, ObjectState{
			ID:       g.ID().String(),
			Name:     g.Name(),
			Position: tr.Position(),
			Rotation: [4]float64{q.W, q.V[0], q.V[1], q.V[2]},
		})
	}
	return snap
}
