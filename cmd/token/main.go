// Command token выпускает JWT игрока для локальной разработки.
//
//	go run ./cmd/token -player 0xabc -ttl 24h
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"butterfly-story/shared/authutils"
	"butterfly-story/shared/utils"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	player := flag.String("player", "", "адрес кошелька игрока")
	ttl := flag.Duration("ttl", 24*time.Hour, "время жизни токена")
	flag.Parse()

	if *player == "" {
		log.Fatal("-player обязателен")
	}
	secret, err := utils.ReadSecretOrEnv("jwt_secret", "JWT_SECRET")
	if err != nil {
		log.Fatalf("Не удалось прочитать секрет: %v", err)
	}
	token, err := authutils.IssueToken(secret, *player, *ttl)
	if err != nil {
		log.Fatalf("Не удалось выпустить токен: %v", err)
	}
	fmt.Println(token)
}
