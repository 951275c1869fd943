package crud

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	edgeOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_graph_edges_total",
		Help: "Follow and like edges created or removed.",
	}, []string{"kind", "op"})
)

const (
	edgeFollow      = "follow"
	edgePostLike    = "post_like"
	edgeCommentLike = "comment_like"

	opCreate = "create"
	opDelete = "delete"
)
