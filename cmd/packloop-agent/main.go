package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OSejal/Packloop/internal/geo"
	"github.com/OSejal/Packloop/internal/models"
	"github.com/OSejal/Packloop/internal/tracking"
)

// Агент трекинга: в режиме watch опрашивает позицию заказа для отображения,
// в режиме share транслирует имитированный маршрут курьера на сервер.
func main() {
	var (
		serverAddr string
		token      string
		orderID    string
		mode       string
		interval   time.Duration
		fromLat    float64
		fromLon    float64
		toLat      float64
		toLon      float64
		steps      int
	)

	flag.StringVar(&serverAddr, "server", "http://localhost:8080", "адрес сервера")
	flag.StringVar(&token, "token", os.Getenv("PACKLOOP_TOKEN"), "bearer-токен")
	flag.StringVar(&orderID, "order", "", "идентификатор заказа")
	flag.StringVar(&mode, "mode", "watch", "режим работы: watch или share")
	flag.DurationVar(&interval, "interval", tracking.DefaultPollInterval, "период опроса или отправки")
	flag.Float64Var(&fromLat, "from-lat", 23.3441, "широта точки забора")
	flag.Float64Var(&fromLon, "from-lon", 85.3096, "долгота точки забора")
	flag.Float64Var(&toLat, "to-lat", 23.3550, "широта точки доставки")
	flag.Float64Var(&toLon, "to-lon", 85.3200, "долгота точки доставки")
	flag.IntVar(&steps, "steps", 20, "число шагов имитированного маршрута")
	flag.Parse()

	if orderID == "" {
		log.Fatal("order id is required (-order)")
	}
	if token == "" {
		log.Fatal("token is required (-token or PACKLOOP_TOKEN)")
	}

	client := tracking.NewHTTPClient(serverAddr, token, 5*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	switch mode {
	case "watch":
		runWatch(ctx, quit, client, orderID, interval)
	case "share":
		runShare(ctx, quit, client, orderID, interval,
			geo.Point{Lat: fromLat, Lon: fromLon}, geo.Point{Lat: toLat, Lon: toLon}, steps)
	default:
		log.Fatalf("unknown mode %q, expected watch or share", mode)
	}
}

func runWatch(ctx context.Context, quit <-chan os.Signal, client tracking.Client, orderID string, interval time.Duration) {
	poller := tracking.NewPoller(client, orderID, interval, func(loc *models.LocationResponse) {
		if loc == nil {
			log.Printf("order %s: no location reported yet", orderID)
			return
		}
		if loc.DistanceToPickupKm != nil {
			log.Printf("order %s: %.6f, %.6f (%.2f km from pickup) at %s",
				orderID, loc.Latitude, loc.Longitude, *loc.DistanceToPickupKm, loc.UpdatedAt)
			return
		}
		log.Printf("order %s: %.6f, %.6f at %s", orderID, loc.Latitude, loc.Longitude, loc.UpdatedAt)
	}, log.Default())

	poller.Start(ctx)
	log.Printf("watching order %s every %s", orderID, interval)

	<-quit
	poller.Stop()
	log.Println("watch stopped")
}

func runShare(ctx context.Context, quit <-chan os.Signal, client tracking.Client, orderID string, interval time.Duration, from, to geo.Point, steps int) {
	source := tracking.NewRouteSource(from, to, steps, interval)
	sharer := tracking.NewSharer(client, log.Default())

	session := sharer.Share(ctx, orderID, source)
	log.Printf("sharing route for order %s every %s", orderID, interval)

	select {
	case <-quit:
		sharer.Stop()
		log.Println("sharing stopped")
	case <-session.Done():
		if err := session.Err(); err != nil {
			log.Fatalf("sharing session ended: %v", err)
		}
		log.Println("sharing session ended")
	}
}
