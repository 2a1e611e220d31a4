package main

import (
	"flag"
	"net/http"

	"github.com/sirupsen/logrus"

	"enchat/internal/relay"
	"enchat/internal/rendezvous"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	log := logrus.New()

	hub := relay.NewHub(rendezvous.New(), log)
	http.Handle("/chat", hub)

	log.WithField("addr", *addr).Info("rendezvous server listening")
	if err := http.ListenAndServe(*addr, nil); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
