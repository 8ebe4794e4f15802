package visual

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var imageDownloadCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "labelbot_image_downloads",
	Help: "Number of image downloads, by HTTP status code",
}, []string{"status"})

var imageDownloadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "labelbot_image_download_duration_sec",
	Help: "Duration of image download attempts",
})

var imageMatchCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "labelbot_image_hash_checks",
	Help: "Number of images compared against the reference set, by result",
}, []string{"result"})
