package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"playground_server/internal/db"
	"playground_server/internal/migrations"
)

func main() {
	apply := flag.Bool("apply", false, "apply migrations")
	flag.Parse()

	if !*apply {
		names, err := migrations.Names()
		if err != nil {
			log.Fatal(err)
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	pool, err := db.Connect(context.Background(), dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	applied, err := migrations.Apply(context.Background(), pool)
	if err != nil {
		log.Fatal(err)
	}
	for _, name := range applied {
		fmt.Printf("applied %s\n", name)
	}
}
