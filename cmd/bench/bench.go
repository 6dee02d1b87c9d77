package main

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"code.cloudfoundry.org/bytefmt"
	"github.com/olekukonko/tablewriter"
	"github.com/shirou/gopsutil/cpu"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/spacemeshos/sloth/config"
	"github.com/spacemeshos/sloth/proving"
	"github.com/spacemeshos/sloth/shared"
	"github.com/spacemeshos/sloth/verifying"
)

var input = []byte("sloth benchmark input")

func main() {
	bits := flag.UintSlice("bits", []uint{512, 1024, 1536, 2048, 2560, 3072, 3584, 4096}, "modulus sizes, in bits")
	iterations := flag.UintSlice("iterations", []uint{500, 5000, 10000, 25000, 50000, 75000}, "numbers of rounds")
	scheme := flag.String("scheme", string(config.DefaultScheme), "construction to use (reference, bound)")
	single := flag.Bool("single", false, "run only the first bits and iterations values")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize zap logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cases := genTestCases(*bits, *iterations, shared.Scheme(*scheme), *single)
	data := make([][]string, 0, len(cases))
	for i, cfg := range cases {
		logger.Info("bench: case starting",
			zap.Int("case", i+1),
			zap.Int("total", len(cases)),
			zap.Uint32("bits", cfg.Bits),
			zap.Uint64("iterations", cfg.Iterations),
		)

		t := time.Now()
		proof, meta, err := proving.Generate(input, cfg)
		if err != nil {
			logger.Fatal("bench: compute failed", zap.Error(err))
		}
		eCompute := time.Since(t)

		t = time.Now()
		if err := verifying.Verify(proof, meta); err != nil {
			logger.Fatal("bench: verify failed", zap.Error(err))
		}
		eVerify := time.Since(t)

		data = append(data, []string{
			strconv.FormatUint(uint64(cfg.Bits), 10),
			strconv.FormatUint(cfg.Iterations, 10),
			bytefmt.ByteSize(uint64(len(proof.Witness))),
			eCompute.Round(time.Millisecond).String(),
			eVerify.Round(time.Millisecond).String(),
			fmt.Sprintf("%.1f", float64(eCompute)/float64(eVerify)),
		})
	}

	header := []string{"bits", "iterations", "witness", "compute", "verify", "ratio"}
	report(header, data)
}

func cpuModel() string {
	info, err := cpu.Info()
	if err != nil || len(info) == 0 {
		return runtime.GOARCH
	}
	return info[0].ModelName
}

func report(header []string, data [][]string) {
	fmt.Printf("\n\nBENCHMARKS: cpu=%v, GOMAXPROCS=%v\n", cpuModel(), runtime.GOMAXPROCS(0))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetBorder(true)
	table.AppendBulk(data)
	table.Render()
}

func genTestCases(bits, iterations []uint, scheme shared.Scheme, single bool) []config.Config {
	cases := make([]config.Config, 0, len(bits)*len(iterations))
	for _, b := range bits {
		for _, it := range iterations {
			cases = append(cases, config.Config{
				Bits:       uint32(b),
				Iterations: uint64(it),
				Scheme:     scheme,
			})
			if single {
				return cases
			}
		}
	}
	return cases
}
