package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	UsersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "microblog", Name: "users_created_total", Help: "Users registered",
	})
	UsersDestroyed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "microblog", Name: "users_destroyed_total", Help: "Users destroyed by an admin",
	})
	Follows = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "microblog", Name: "follow_actions_total", Help: "Follow and unfollow actions",
	}, []string{"action"})
	MicropostsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "microblog", Name: "microposts_created_total", Help: "Microposts published",
	})
	AuthFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "microblog", Name: "auth_failures_total", Help: "Rejected sign-in attempts",
	})
)

func init() {
	prometheus.MustRegister(UsersCreated, UsersDestroyed, Follows, MicropostsCreated, AuthFailures)
}
