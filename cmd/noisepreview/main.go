// Terrain generation preview tool - interactive visualization with sliders.
//
// Usage: go run ./cmd/noisepreview
package main

import (
	"fmt"
	"image/color"
	"log"
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"seep/config"
	"seep/world"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewW     = 512
	previewH     = 256
	panelWidth   = windowWidth - previewW - 30
)

// genStats summarizes one generated world for the readout line.
type genStats struct {
	solid     int
	caves     int
	poolCells int
	surfMin   int32
	surfMax   int32
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseline := cfg.World
	params := baseline

	rl.InitWindow(windowWidth, windowHeight, "Terrain Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	gridW, gridH := params.Width, params.Height
	pixels := make([]color.RGBA, gridW*gridH)
	img := rl.GenImageColor(gridW, gridH, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	var stats genStats
	regen := func() {
		w := world.New(int32(params.Width), int32(params.Height), int32(params.ChunkSize), cfg.Fluid.Params())
		world.NewGenerator(params).Generate(w)
		stats = fillPixels(w, pixels)
		rl.UpdateTexture(texture, pixels)
	}
	regen()

	needsRegen := false
	for !rl.WindowShouldClose() {
		if needsRegen {
			regen()
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// Draw preview
		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: float32(gridW), Height: float32(gridH)},
			rl.Rectangle{X: 10, Y: 10, Width: previewW, Height: previewH},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewW, previewH, rl.DarkGray)

		// Draw stats
		statsY := int32(previewH + 25)
		cells := gridW * gridH
		rl.DrawText(fmt.Sprintf("Solid: %d%%  Caves: %d  Pool cells: %d", stats.solid*100/cells, stats.caves, stats.poolCells),
			15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Surface: y %d..%d  Seed: %d", stats.surfMin, stats.surfMax, params.Seed),
			15, statsY+20, 16, rl.DarkGray)

		// YAML snippet, left column under the stats
		yamlLines := []string{
			"world:",
			fmt.Sprintf("  seed: %d", params.Seed),
			fmt.Sprintf("  surface_level: %.2f", params.SurfaceLevel),
			fmt.Sprintf("  surface_relief: %.2f", params.SurfaceRelief),
			fmt.Sprintf("  noise_scale: %.4f", params.NoiseScale),
			fmt.Sprintf("  octaves: %d", params.Octaves),
			fmt.Sprintf("  lacunarity: %.1f", params.Lacunarity),
			fmt.Sprintf("  gain: %.2f", params.Gain),
			fmt.Sprintf("  dirt_depth: %d", params.DirtDepth),
			fmt.Sprintf("  cave_scale: %.3f", params.CaveScale),
			fmt.Sprintf("  cave_threshold: %.2f", params.CaveThreshold),
			fmt.Sprintf("  sea_level: %.2f", params.SeaLevel),
			fmt.Sprintf("  pool_chance: %.2f", params.PoolChance),
		}
		yamlY := statsY + 50
		rl.DrawText("YAML Config (C to copy):", 15, yamlY, 16, rl.DarkGray)
		yamlY += 25
		for _, line := range yamlLines {
			rl.DrawText(line, 15, yamlY, 14, rl.Gray)
			yamlY += 16
		}
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(strings.Join(yamlLines, "\n"))
		}

		// Control panel
		panelX := float32(previewW + 20)
		panelY := float32(10)

		rl.DrawText("Terrain Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		// Surface level slider
		rl.DrawText("Surface level (mean height fraction)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newLevel := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0.30", "0.80",
			float32(params.SurfaceLevel), 0.30, 0.80,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.SurfaceLevel), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if float64(newLevel) != params.SurfaceLevel {
			params.SurfaceLevel = float64(newLevel)
			needsRegen = true
		}
		panelY += 35

		// Surface relief slider
		rl.DrawText("Surface relief (amplitude fraction)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newRelief := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0.00", "0.40",
			float32(params.SurfaceRelief), 0.00, 0.40,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.SurfaceRelief), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if float64(newRelief) != params.SurfaceRelief {
			params.SurfaceRelief = float64(newRelief)
			needsRegen = true
		}
		panelY += 35

		// Noise scale slider
		rl.DrawText("Noise scale (surface frequency)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newScale := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0.001", "0.030",
			float32(params.NoiseScale), 0.001, 0.030,
		)
		rl.DrawText(fmt.Sprintf("%.4f", params.NoiseScale), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if float64(newScale) != params.NoiseScale {
			params.NoiseScale = float64(newScale)
			needsRegen = true
		}
		panelY += 35

		// Octaves slider
		rl.DrawText("Octaves (fBm detail level)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newOctaves := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"1", "8",
			float32(params.Octaves), 1, 8,
		)
		rl.DrawText(fmt.Sprintf("%d", params.Octaves), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int(newOctaves) != params.Octaves {
			params.Octaves = int(newOctaves)
			needsRegen = true
		}
		panelY += 35

		// Cave scale slider
		rl.DrawText("Cave scale (cave noise frequency)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newCaveScale := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0.010", "0.150",
			float32(params.CaveScale), 0.010, 0.150,
		)
		rl.DrawText(fmt.Sprintf("%.3f", params.CaveScale), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if float64(newCaveScale) != params.CaveScale {
			params.CaveScale = float64(newCaveScale)
			needsRegen = true
		}
		panelY += 35

		// Cave threshold slider
		rl.DrawText("Cave threshold (higher = fewer caves)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newCaveThresh := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0.40", "0.90",
			float32(params.CaveThreshold), 0.40, 0.90,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.CaveThreshold), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if float64(newCaveThresh) != params.CaveThreshold {
			params.CaveThreshold = float64(newCaveThresh)
			needsRegen = true
		}
		panelY += 35

		// Sea level slider
		rl.DrawText("Sea level (pools fill up to this)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newSea := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0.20", "0.70",
			float32(params.SeaLevel), 0.20, 0.70,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.SeaLevel), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if float64(newSea) != params.SeaLevel {
			params.SeaLevel = float64(newSea)
			needsRegen = true
		}
		panelY += 35

		// Pool chance slider
		rl.DrawText("Pool chance (per candidate basin)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newPool := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0.0", "1.0",
			float32(params.PoolChance), 0, 1,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.PoolChance), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if float64(newPool) != params.PoolChance {
			params.PoolChance = float64(newPool)
			needsRegen = true
		}
		panelY += 45

		// Buttons
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			params.Seed = int64(rl.GetRandomValue(0, 999999))
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = baseline
			needsRegen = true
		}

		rl.EndDrawing()
	}
}

// fillPixels renders the world into the pixel buffer, top row first, and
// gathers the summary stats in the same pass.
func fillPixels(w *world.World, pixels []color.RGBA) genStats {
	width, height := w.Width(), w.Height()
	surface := scanSurface(w)

	stats := genStats{surfMin: height, surfMax: 0}
	for _, s := range surface {
		if s < stats.surfMin {
			stats.surfMin = s
		}
		if s > stats.surfMax {
			stats.surfMax = s
		}
	}

	for row := int32(0); row < height; row++ {
		y := height - 1 - row
		for x := int32(0); x < width; x++ {
			px, kind := cellColor(w, x, y, surface[x])
			pixels[row*width+x] = px
			switch kind {
			case cellSolid:
				stats.solid++
			case cellCave:
				stats.caves++
			case cellPool:
				stats.poolCells++
			}
		}
	}
	return stats
}

// scanSurface returns the highest non-air cell per column, -1 for an
// empty column.
func scanSurface(w *world.World) []int32 {
	surface := make([]int32, w.Width())
	for x := range surface {
		surface[x] = -1
		for y := w.Height() - 1; y >= 0; y-- {
			if w.Block(int32(x), y) != world.BlockAir {
				surface[x] = y
				break
			}
		}
	}
	return surface
}

type cellKind int

const (
	cellSky cellKind = iota
	cellSolid
	cellCave
	cellPool
)

// cellColor maps one cell to its preview pixel.
func cellColor(w *world.World, x, y, surf int32) (color.RGBA, cellKind) {
	c, _ := w.FluidBlock(x, y)
	if !c.IsSolid() && c.Weight() > 0 {
		fc := c.Color()
		if fc.IsZero() {
			fc = world.WaterColor
		}
		return color.RGBA{R: fc.R, G: fc.G, B: fc.B, A: 255}, cellPool
	}

	switch w.Block(x, y) {
	case world.BlockGrass:
		return color.RGBA{R: 88, G: 156, B: 70, A: 255}, cellSolid
	case world.BlockDirt:
		return color.RGBA{R: 121, G: 85, B: 58, A: 255}, cellSolid
	case world.BlockStone:
		return color.RGBA{R: 110, G: 112, B: 118, A: 255}, cellSolid
	case world.BlockSand:
		return color.RGBA{R: 199, G: 182, B: 130, A: 255}, cellSolid
	default:
		if y > surf {
			return color.RGBA{R: 150, G: 190, B: 230, A: 255}, cellSky
		}
		return color.RGBA{R: 24, G: 26, B: 34, A: 255}, cellCave
	}
}
