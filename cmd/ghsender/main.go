package main

import (
	"flag"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/repentsinner/ghsender-sub001/config"
	"github.com/repentsinner/ghsender-sub001/machine"
	"github.com/repentsinner/ghsender-sub001/machine/grbl"
)

func main() {
	cfg := config.Load()

	device := flag.String("port", cfg.SerialDevice, "Serial device path.")
	socketURL := flag.String("socket", cfg.SocketURL, "Websocket URL of a grblHAL network port (overrides -port).")
	addr := flag.String("addr", cfg.BindAddr, "Address to bind the sender API to.")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error).")
	flag.Parse()

	logger := newLogger(*logLevel)

	model := machine.NewModel(machine.SystemClock{})

	var adapter machine.Adapter
	if *socketURL != "" {
		adapter = grbl.NewSocketAdapter(*socketURL, cfg.StatusInterval, model, logger)
	} else {
		var err error
		adapter, err = grbl.NewSerialAdapter(*device, cfg.SerialBaud, cfg.StatusInterval, model, logger)
		if err != nil {
			logger.WithError(err).Fatal("open serial port")
		}
	}
	defer adapter.Close()

	jog := machine.NewJogController(model, adapter.Send, machine.DefaultJogParams(), machine.SystemClock{})

	api := newAPI(model, adapter, jog, cfg.JogTick, logger)

	logger.Infof("listening on %s", *addr)
	if err := http.ListenAndServe(*addr, api); err != nil {
		logger.WithError(err).Fatal("serve API")
	}
}

func newLogger(level string) *logrus.Logger {
	logger := logrus.New()
	lv, err := logrus.ParseLevel(level)
	if err != nil {
		lv = logrus.InfoLevel
	}
	logger.SetLevel(lv)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return logger
}
