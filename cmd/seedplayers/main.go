// Seeds the players table with the NHL draft pool. Safe to run repeatedly:
// existing names are left untouched.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/rinkdraft/rinkdraft/internal/dbconfig"
	"github.com/rinkdraft/rinkdraft/internal/models"
	"github.com/rinkdraft/rinkdraft/internal/players"
)

type seedPlayer struct {
	Name     string
	Position string
	Avatar   string
}

const headshotURL = "https://cms.nhl.bamgrid.com/images/headshots/current/168x168/%s.jpg"

func headshot(id string) string {
	return fmt.Sprintf(headshotURL, id)
}

var draftPool = []seedPlayer{
	// Forwards
	{"Connor McDavid", "C", headshot("8478402")},
	{"Auston Matthews", "C", headshot("8479318")},
	{"Nathan MacKinnon", "C", headshot("8477492")},
	{"Leon Draisaitl", "C", headshot("8477934")},
	{"Sidney Crosby", "C", headshot("8471675")},
	{"David Pastrnak", "RW", headshot("8477956")},
	{"Nikita Kucherov", "RW", headshot("8476453")},
	{"Matthew Tkachuk", "LW", headshot("8479314")},
	{"Artemi Panarin", "LW", headshot("8478550")},
	{"Mikko Rantanen", "RW", headshot("8478420")},
	{"Jack Eichel", "C", headshot("8478403")},
	{"Elias Pettersson", "C", headshot("8481539")},
	{"Kirill Kaprizov", "LW", headshot("8478864")},
	{"Jason Robertson", "LW", headshot("8480027")},
	{"Mitch Marner", "RW", headshot("8478483")},
	{"Alex Ovechkin", "LW", headshot("8471214")},
	{"Brad Marchand", "LW", headshot("8473419")},
	{"Sebastian Aho", "C", headshot("8478427")},
	{"J.T. Miller", "C", headshot("8476468")},
	{"Kyle Connor", "LW", headshot("8478398")},

	// Defensemen
	{"Cale Makar", "D", headshot("8480069")},
	{"Roman Josi", "D", headshot("8474600")},
	{"Quinn Hughes", "D", headshot("8480800")},
	{"Adam Fox", "D", headshot("8479323")},
	{"Victor Hedman", "D", headshot("8475167")},
	{"Moritz Seider", "D", headshot("8481542")},
	{"Evan Bouchard", "D", headshot("8480803")},
	{"Josh Morrissey", "D", headshot("8477504")},
	{"Dougie Hamilton", "D", headshot("8476462")},
	{"Miro Heiskanen", "D", headshot("8480036")},
	{"Charlie McAvoy", "D", headshot("8479325")},
	{"Devon Toews", "D", headshot("8478438")},
	{"Aaron Ekblad", "D", headshot("8477932")},
	{"Rasmus Dahlin", "D", headshot("8480839")},
	{"Thomas Chabot", "D", headshot("8479975")},

	// Goalies
	{"Connor Hellebuyck", "G", headshot("8476945")},
	{"Igor Shesterkin", "G", headshot("8478048")},
	{"Andrei Vasilevskiy", "G", headshot("8476883")},
	{"Juuse Saros", "G", headshot("8477424")},
	{"Ilya Sorokin", "G", headshot("8478009")},
	{"Jake Oettinger", "G", headshot("8479979")},
	{"Jeremy Swayman", "G", headshot("8480280")},
	{"Alexandar Georgiev", "G", headshot("8478027")},
	{"Linus Ullmark", "G", headshot("8476999")},
	{"Frederik Andersen", "G", headshot("8475883")},
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not load .env file: %v\n", err)
	}

	cfg := dbconfig.NewConfigFromEnv()
	db, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := players.NewRepository(db)

	total, inserted, skipped, errs := len(draftPool), 0, 0, 0
	for _, p := range draftPool {
		added, err := repo.UpsertPlayer(ctx, models.Player{
			ID:        uuid.New(),
			Name:      p.Name,
			Position:  p.Position,
			AvatarURL: p.Avatar,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed error: %v\n", err)
			errs++
			continue
		}
		if added {
			inserted++
		} else {
			skipped++
		}
	}

	fmt.Printf("Players seed: total=%d inserted=%d skipped=%d errors=%d\n",
		total, inserted, skipped, errs)
	if errs > 0 {
		os.Exit(1)
	}
}
