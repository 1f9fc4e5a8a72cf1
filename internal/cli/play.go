package cli

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/zhouzirui/storyforge/internal/config"
	"github.com/zhouzirui/storyforge/internal/model/state"
	"github.com/zhouzirui/storyforge/internal/service/inference"
	"github.com/zhouzirui/storyforge/internal/service/narrator"
	"github.com/zhouzirui/storyforge/internal/service/rag"
	"github.com/zhouzirui/storyforge/internal/service/turn"
	"github.com/zhouzirui/storyforge/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Start or resume an adventure",
		Run:   runPlay,
	}
	cmd.Flags().Bool("new", false, "Start a new session even when saves exist")
	RootCmd.AddCommand(cmd)
}

func runPlay(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	forceNew, _ := cmd.Flags().GetBool("new")

	cfg, err := config.Load()
	if err != nil {
		exitErr("load configuration", err)
	}

	st := openStore()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	in := bufio.NewScanner(os.Stdin)

	runtime := inference.NewManager(cfg.Game.RuntimeCommand)
	if err := runtime.EnsureRunning(); err != nil {
		log.Printf("[cli] local inference runtime unavailable: %v", err)
	}
	defer runtime.Stop()

	var gamemaster turn.Narrator
	if cfg.AI.Enabled() {
		svc, err := narrator.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("[cli] narrator initialization failed, turns will use fallback text: %v", err)
		} else {
			gamemaster = svc
		}
	} else {
		log.Printf("[cli] AI narration is not configured, turns will use fallback text")
	}

	sess := selectSession(st, in, rng, forceNew)
	transcript := store.NewTranscript(filepath.Join(st.Dir(), store.TranscriptFilename))
	aiCfg := store.NewAIConfig(filepath.Join(st.Dir(), store.AIConfigFilename))
	retrieval := rag.NewDirectoryIndex(filepath.Join(st.Dir(), "lore"))

	proc := turn.NewProcessor(st, transcript, aiCfg, gamemaster, retrieval, rng)

	fmt.Printf("\n%s\n", store.Summarize(sess))
	fmt.Println("\nType 'help' for commands; anything else is your character's action.")

	for {
		fmt.Print("\n> ")
		if !in.Scan() {
			break
		}
		input := strings.TrimSpace(in.Text())
		if input == "" {
			continue
		}

		handled, quit := handleMeta(st, sess, input)
		if quit {
			break
		}
		if handled {
			continue
		}

		res, err := proc.PlayTurn(ctx, sess, input)
		if err != nil {
			if errors.Is(err, turn.ErrSessionEnded) {
				fmt.Println("This session has ended. Start a new adventure with 'play --new'.")
				break
			}
			exitErr("play turn", err)
		}
		printResult(sess, res)
		if res.Ended {
			break
		}
	}
	proc.End()
	fmt.Println("\nFarewell, adventurer.")
}

func selectSession(st *store.Store, in *bufio.Scanner, rng *rand.Rand, forceNew bool) *state.Session {
	if !forceNew {
		if path, ok := st.LatestSessionPath(); ok {
			fmt.Printf("Continue the latest session (%s)? [Y/n] ", filepath.Base(path))
			if in.Scan() && !strings.EqualFold(strings.TrimSpace(in.Text()), "n") {
				sess, err := st.Load(path)
				if err == nil {
					fmt.Printf("Welcome back, %s.\n", sess.PlayerName())
					return sess
				}
				// A broken save is not fatal; start fresh instead.
				log.Printf("[cli] failed to load %s, starting a new session: %v", path, err)
			}
		}
	}

	sheet := promptSheet(in)
	sess := state.NewSession(st.NextSessionID(), sheet, rng)
	if err := st.Save(sess, st.SessionPath(sess.ID())); err != nil {
		exitErr("save new session", err)
	}
	fmt.Printf("Created session %s. Welcome, %s the %s %s!\n",
		sess.ID(), sess.PlayerName(), sess.PlayerRace(), sess.PlayerClass())
	return sess
}

// promptSheet collects the new character's details. Blank answers fall
// back to the defaults in the state package.
func promptSheet(in *bufio.Scanner) state.CharacterSheet {
	ask := func(question string) string {
		fmt.Printf("%s ", question)
		if !in.Scan() {
			return ""
		}
		return strings.TrimSpace(in.Text())
	}

	fmt.Println("\nA new adventure begins. Leave any answer blank for the default.")
	return state.CharacterSheet{
		Name:       ask("Character name?"),
		Race:       ask("Race?"),
		Class:      ask("Class?"),
		Gender:     ask("Gender?"),
		Background: ask("Background?"),
		Campaign:   ask("Campaign name?"),
	}
}

// handleMeta runs commands that talk to the session without consuming a
// turn. It reports whether the input was a command, and whether to quit.
func handleMeta(st *store.Store, sess *state.Session, input string) (handled, quit bool) {
	fields := strings.Fields(input)
	switch strings.ToLower(fields[0]) {
	case "help":
		fmt.Println("Commands: save, inventory, stats, skills, take <item>, quit. Anything else plays a turn.")
		return true, false
	case "save":
		if err := st.Save(sess, st.SessionPath(sess.ID())); err != nil {
			fmt.Printf("Save failed: %v\n", err)
		} else {
			fmt.Printf("Session %s saved.\n", sess.ID())
		}
		return true, false
	case "inventory":
		items := sess.Inventory()
		if len(items) == 0 {
			fmt.Println("Your pack is empty.")
		} else {
			fmt.Printf("You carry: %s.\n", strings.Join(items, ", "))
		}
		return true, false
	case "stats":
		fmt.Printf("Level %d, %d XP. HP %d/%d, AC %d, %d gold.\n",
			sess.Level(), sess.XP(), sess.HitPoints(), sess.MaxHitPoints(),
			sess.ArmorClass(), sess.Gold())
		for _, name := range sess.Stats() {
			fmt.Printf("  %s: %d\n", name, sess.Stat(name))
		}
		return true, false
	case "skills":
		skills := sess.Skills()
		if len(skills) == 0 {
			fmt.Println("No skills learned yet. They develop as you use them.")
			return true, false
		}
		for _, name := range skills {
			mod, _ := sess.SkillModifier(name)
			fmt.Printf("  %s: %+d\n", name, mod)
		}
		return true, false
	case "take":
		if len(fields) < 2 {
			fmt.Println("Take what?")
			return true, false
		}
		item := strings.Join(fields[1:], " ")
		sess.AddItem(item)
		fmt.Printf("You take the %s.\n", item)
		return true, false
	case "quit", "exit":
		if err := st.Save(sess, st.SessionPath(sess.ID())); err != nil {
			fmt.Printf("Save failed: %v\n", err)
		} else {
			fmt.Printf("Session %s saved.\n", sess.ID())
		}
		return true, true
	}
	return false, false
}

func printResult(sess *state.Session, res *turn.Result) {
	if res.WorldEvent != "" {
		fmt.Printf("\n*** World Event ***\n%s\n", res.WorldEvent)
	}

	fmt.Printf("\n(You rolled %d)\n%s\n", res.Roll, res.Narration)

	if res.SkillCheck != nil {
		check := res.SkillCheck
		if check.NewlyLearned {
			fmt.Printf("\nYou attempt %s for the first time.\n", check.Skill)
		}
		fmt.Printf("%s check: %d roll %+d skill %+d %s = %d\n",
			check.Skill, check.Roll, check.SkillModifier, check.AbilityModifier, check.Ability, check.Total)
	}
	if len(res.Discovered) > 0 {
		fmt.Printf("Newly discovered: %s.\n", strings.Join(res.Discovered, ", "))
	}
	if res.Damage > 0 {
		fmt.Printf("You take %d damage. HP: %d/%d.\n", res.Damage, sess.HitPoints(), sess.MaxHitPoints())
	}
	if res.Death.RevivalItem != "" {
		fmt.Printf("Your %s is consumed, and you claw your way back to life with %d HP.\n",
			res.Death.RevivalItem, sess.HitPoints())
	}
	if res.Death.Died {
		fmt.Println("\nYou have died. This story is over.")
		return
	}
	for _, up := range res.LevelUps {
		fmt.Printf("*** Level up! You are now level %d. %s rises to %d; max HP is %d. ***\n",
			up.Level, up.Stat, up.StatScore, up.MaxHitPoints)
	}
}
