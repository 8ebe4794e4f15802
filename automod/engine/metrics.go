package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var moderateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "labelbot_moderate_duration_sec",
	Help: "Total duration of moderating a single post",
})

var moderateCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "labelbot_posts_moderated",
	Help: "Number of posts run through the rule engine",
})

var ruleErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "labelbot_rule_errors",
	Help: "Number of rule executions which failed or panicked",
}, []string{"rule"})

var labelCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "labelbot_labels",
	Help: "Number of labels emitted",
}, []string{"val"})

var fetchErrorCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "labelbot_post_fetch_errors",
	Help: "Number of post references which could not be fetched",
})
