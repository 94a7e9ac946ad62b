package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// playsPurchased counts stake reservations per category.
var playsPurchased = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "raspadinha",
	Subsystem: "plays",
	Name:      "purchased_total",
	Help:      "Total plays purchased.",
}, []string{"category"})

// playsSettled counts settlements by result.
var playsSettled = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "raspadinha",
	Subsystem: "plays",
	Name:      "settled_total",
	Help:      "Total plays settled.",
}, []string{"result"})

// prizesPaid accumulates credited prize money in minor units.
var prizesPaid = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "raspadinha",
	Subsystem: "ledger",
	Name:      "prizes_paid_minor_units_total",
	Help:      "Total prize money credited, in minor currency units.",
})

// insufficientFunds counts purchases rejected for lack of balance.
var insufficientFunds = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "raspadinha",
	Subsystem: "ledger",
	Name:      "insufficient_funds_total",
	Help:      "Total purchases rejected because the balance fell short.",
})
