package segmentation

import (
	"container/heap"

	"grainscope/internal/models"
)

// floodItem is a queued pixel. age is the insertion sequence number and
// breaks elevation ties first-in first-out.
type floodItem struct {
	elevation float32
	age       uint64
	index     int
}

type floodQueue []floodItem

func (q floodQueue) Len() int { return len(q) }

func (q floodQueue) Less(i, j int) bool {
	if q[i].elevation != q[j].elevation {
		return q[i].elevation < q[j].elevation
	}
	return q[i].age < q[j].age
}

func (q floodQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *floodQueue) Push(x any) { *q = append(*q, x.(floodItem)) }

func (q *floodQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

var neighbours8 = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// priorityFlood grows markers over elevation, lowest first, never leaving
// mask. A pixel takes the label of the basin that queues it first, so no
// watershed line is produced. Mask pixels unreachable from any marker keep 0.
func priorityFlood(elevation []float32, markers *models.LabelMap, mask *models.Binary) *models.LabelMap {
	w, h := markers.Width, markers.Height
	out := &models.LabelMap{Width: w, Height: h, Labels: make([]int32, len(markers.Labels))}

	q := make(floodQueue, 0, len(markers.Labels)/4+1)
	var age uint64
	for i, l := range markers.Labels {
		if l == 0 || mask.Pix[i] == models.Background {
			continue
		}
		out.Labels[i] = l
		q = append(q, floodItem{elevation: elevation[i], age: age, index: i})
		age++
	}
	heap.Init(&q)

	for q.Len() > 0 {
		item := heap.Pop(&q).(floodItem)
		x, y := item.index%w, item.index/w
		label := out.Labels[item.index]

		for _, d := range neighbours8 {
			nx, ny := x+d[0], y+d[1]
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			n := ny*w + nx
			if out.Labels[n] != 0 || mask.Pix[n] == models.Background {
				continue
			}
			out.Labels[n] = label
			heap.Push(&q, floodItem{elevation: elevation[n], age: age, index: n})
			age++
		}
	}

	return out
}
