package reader

import (
	"bufio"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mizar-render/mizar/log"
	"github.com/mizar-render/mizar/mesh"
	"github.com/mizar-render/mizar/scene"
	"github.com/mizar-render/mizar/types"
)

type wavefrontReader struct {
	logger log.Logger

	// The scene being assembled.
	sc *scene.Scene

	// A map of material names to material index.
	matNameToIndex map[string]int32

	// Currently selected material index.
	curMaterial int32

	// Currently selected mesh. Created lazily for files that emit faces
	// before the first g/o statement.
	curMesh *mesh.Mesh

	// List of vertices, normals and uv coords. Indices are global to the
	// file, not per-mesh.
	vertexList []types.Vec3
	normalList []types.Vec3
	uvList     []types.Vec2

	// An error stack that provides additional error information when
	// scene files include other files (models, mat libs e.t.c)
	errStack []string
}

// Create a new wavefront object reader.
func newWavefrontReader() *wavefrontReader {
	return &wavefrontReader{
		logger:         log.New("reader"),
		sc:             scene.New(),
		matNameToIndex: make(map[string]int32),
		curMaterial:    -1,
	}
}

// Read the scene definition and assemble the scene. Hierarchies are not
// built; the caller decides when to trigger the first Rebuild.
func (r *wavefrontReader) Read(sceneRes *resource) (*scene.Scene, error) {
	r.logger.Noticef("parsing scene from %s", sceneRes.Path())
	start := time.Now()

	err := r.parse(sceneRes)
	if err != nil {
		return nil, err
	}

	// If no mesh instances are defined, create an identity instance for
	// each defined mesh
	if r.sc.NumInstances() == 0 {
		for meshIndex := 0; meshIndex < r.sc.NumMeshes(); meshIndex++ {
			r.sc.AddInstance(int32(meshIndex), types.Ident4())
		}
	}

	r.logger.Noticef("parsed scene in %d ms (%d meshes, %d instances)",
		time.Since(start).Nanoseconds()/1e6, r.sc.NumMeshes(), r.sc.NumInstances())

	return r.sc, nil
}

// Generate an error message that also includes any data in the error stack.
func (r *wavefrontReader) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)

	var errMsg string
	if file != "" {
		errMsg = strings.Trim(
			fmt.Sprintf("[%s: %d] error: %s\n%s", file, line, msg, strings.Join(r.errStack, "\n")),
			"\n",
		)
	} else {
		errMsg = strings.Trim(
			fmt.Sprintf("error: %s\n%s", msg, strings.Join(r.errStack, "\n")),
			"\n",
		)
	}

	return fmt.Errorf("%s", errMsg)
}

// Push a frame to the error stack.
func (r *wavefrontReader) pushFrame(msg string) {
	r.errStack = append([]string{msg}, r.errStack...)
}

// Pop a frame from the error stack.
func (r *wavefrontReader) popFrame() {
	r.errStack = r.errStack[1:]
}

// Register and select a default material for surfaces not using one.
func (r *wavefrontReader) defaultMaterial() int32 {
	matIndex, exists := r.matNameToIndex[""]
	if !exists {
		matIndex = int32(len(r.matNameToIndex))
		r.matNameToIndex[""] = matIndex
	}
	r.curMaterial = matIndex
	return r.curMaterial
}

// Get the mesh that new faces are appended to, creating a default one if
// the file defines faces before any g/o statement.
func (r *wavefrontReader) targetMesh() *mesh.Mesh {
	if r.curMesh == nil {
		r.curMesh = mesh.New("default")
		r.sc.AddMesh(r.curMesh)
	}
	return r.curMesh
}

// Parse wavefront object scene format.
func (r *wavefrontReader) parse(res *resource) error {
	var lineNum int = 0
	var err error

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 {
			continue
		}

		switch lineTokens[0] {
		case "#":
			continue
		case "call", "mtllib":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, "unsupported syntax for '%s'; expected 1 argument; got %d", lineTokens[0], len(lineTokens)-1)
			}

			r.pushFrame(fmt.Sprintf("referenced from %s:%d [%s]", res.Path(), lineNum, lineTokens[0]))

			incRes, err := newResource(lineTokens[1], res)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
			defer incRes.Close()

			switch lineTokens[0] {
			case "call":
				err = r.parse(incRes)
			case "mtllib":
				err = r.parseMaterials(incRes)
			}

			if err != nil {
				return err
			}
			r.popFrame()
		case "usemtl":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, "unsupported syntax for 'usemtl'; expected 1 argument; got %d", len(lineTokens)-1)
			}

			matName := lineTokens[1]
			matIndex, exists := r.matNameToIndex[matName]
			if !exists {
				return r.emitError(res.Path(), lineNum, "undefined material with name '%s'", matName)
			}

			r.curMaterial = matIndex
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
			r.vertexList = append(r.vertexList, v)
		case "vn":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
			r.normalList = append(r.normalList, v)
		case "vt":
			v, err := parseVec2(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
			r.uvList = append(r.uvList, v)
		case "g", "o":
			if len(lineTokens) < 2 {
				return r.emitError(res.Path(), lineNum, "unsupported syntax for '%s'; expected 1 argument for object name; got %d", lineTokens[0], len(lineTokens)-1)
			}

			r.curMesh = mesh.New(lineTokens[1])
			r.sc.AddMesh(r.curMesh)
		case "f":
			tri, err := r.parseFace(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}

			r.targetMesh().AddTriangle(tri)
		case "camera_fov":
			r.sc.Camera.FOV, err = parseFloat32(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
		case "camera_eye":
			r.sc.Camera.Position, err = parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
		case "camera_look":
			r.sc.Camera.LookAt, err = parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
		case "camera_up":
			r.sc.Camera.Up, err = parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
		case "instance":
			meshIndex, transform, err := r.parseInstance(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
			if _, err = r.sc.AddInstance(meshIndex, transform); err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
		}
	}

	return nil
}

// Parse mesh instance definition. Definitions use the following format:
// instance mesh_name tX tY tZ yaw pitch roll sX sY sZ
// where:
// - tX, tY, tZ       : translation vector
// - yaw, pitch, roll : rotation angles in degrees
// - sX, sY, sZ	      : scale
func (r *wavefrontReader) parseInstance(lineTokens []string) (int32, types.Mat4, error) {
	if len(lineTokens) != 11 {
		return -1, types.Ident4(), fmt.Errorf("unsupported syntax for 'instance'; expected 10 arguments: mesh_name tX tY tZ yaw pitch roll sX sY sZ; got %d", len(lineTokens)-1)
	}

	// Find mesh by name
	meshName := lineTokens[1]
	meshIndex := int32(-1)
	for index := 0; index < r.sc.NumMeshes(); index++ {
		if r.sc.Mesh(int32(index)).Name == meshName {
			meshIndex = int32(index)
			break
		}
	}

	if meshIndex == -1 {
		return -1, types.Ident4(), fmt.Errorf("unknown mesh with name '%s'", meshName)
	}

	var translation, rotation, scale types.Vec3

	// Parse translation
	for index := 2; index < 5; index++ {
		v, err := strconv.ParseFloat(lineTokens[index], 32)
		if err != nil {
			return -1, types.Ident4(), err
		}
		translation[index-2] = float32(v)
	}

	// Parse rotation angles and convert to radians
	for index := 5; index < 8; index++ {
		v, err := strconv.ParseFloat(lineTokens[index], 32)
		if err != nil {
			return -1, types.Ident4(), err
		}
		v *= math.Pi / 180.0
		rotation[index-5] = float32(v)
	}

	// Parse scale
	for index := 8; index < 11; index++ {
		v, err := strconv.ParseFloat(lineTokens[index], 32)
		if err != nil {
			return -1, types.Ident4(), err
		}
		scale[index-8] = float32(v)
	}

	// Generate final matrix: M = T * R * S
	yawQuat := types.QuatFromAxisAngle(types.Vec3{1, 0, 0}, rotation[0])
	pitchQuat := types.QuatFromAxisAngle(types.Vec3{0, 1, 0}, rotation[1])
	rollQuat := types.QuatFromAxisAngle(types.Vec3{0, 0, 1}, rotation[2])
	rotMat := rollQuat.Mul(pitchQuat.Mul(yawQuat)).Normalize().Mat4()

	transform := types.Translate4(translation).Mul4(rotMat.Mul4(types.Scale4(scale)))
	return meshIndex, transform, nil
}

// Parse face definition. Each face definition consists of 3 arguments,
// one for each vertex. Each one of the vertex arguments is comprised of
// 1, 2 or 3 args separated by a slash character. The following formats are
// supported:
// - vertexIndex
// - vertexIndex/uvIndex
// - vertexIndex//normalIndex
// - vertexIndex/uvIndex/normalIndex
//
// Indices start from 1 and may be negative to indicate
// an offset off the end of the vertex/uv list.
//
// This method only works with triangular faces and will return an error if a
// face with more than 3 vertices is encountered.
func (r *wavefrontReader) parseFace(lineTokens []string) (mesh.Triangle, error) {
	var tri mesh.Triangle
	if len(lineTokens) != 4 {
		return tri, fmt.Errorf("unsupported syntax for 'f'; expected 3 arguments for triangular face; got %d. Select the triangulation option in your exporter.", len(lineTokens)-1)
	}

	var vOffset int
	var err error
	expIndices := 0
	for arg := 0; arg < 3; arg++ {
		vTokens := strings.Split(lineTokens[arg+1], "/")

		// The first arg defines the format for the following args
		if arg == 0 {
			expIndices = len(vTokens)
		} else if len(vTokens) != expIndices {
			return tri, fmt.Errorf("expected each face argument to contain %d indices; arg %d contains %d indices", expIndices, arg, len(vTokens))
		}

		// Faces must at least define a vertex coord
		if vTokens[0] == "" {
			return tri, fmt.Errorf("face argument %d does not include a vertex index", arg)
		}

		vOffset, err = selectFaceCoordIndex(vTokens[0], len(r.vertexList))
		if err != nil {
			return tri, fmt.Errorf("could not parse vertex coord for face argument %d: %s", arg, err.Error())
		}
		tri.Vertices[arg] = r.vertexList[vOffset]

		// Parse UV coords if specified
		if len(vTokens) > 1 && vTokens[1] != "" {
			vOffset, err = selectFaceCoordIndex(vTokens[1], len(r.uvList))
			if err != nil {
				return tri, fmt.Errorf("could not parse tex coord for face argument %d: %s", arg, err.Error())
			}
			tri.UVs[arg] = r.uvList[vOffset]
		}

		// Parse normal coords if specified
		if len(vTokens) > 2 && vTokens[2] != "" {
			vOffset, err = selectFaceCoordIndex(vTokens[2], len(r.normalList))
			if err != nil {
				return tri, fmt.Errorf("could not parse normal coord for face argument %d: %s", arg, err.Error())
			}
			tri.Normals[arg] = r.normalList[vOffset]
		}
	}

	// If no material defined select the default
	if r.curMaterial < 0 {
		r.curMaterial = r.defaultMaterial()
	}
	tri.MaterialIndex = r.curMaterial

	return tri, nil
}

// Parse a wavefront material library. Only material names are indexed;
// shading parameters belong to the renderer and are skipped.
func (r *wavefrontReader) parseMaterials(res *resource) error {
	var lineNum int = 0

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 {
			continue
		}

		switch lineTokens[0] {
		case "#":
			continue
		case "newmtl":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, "unsupported syntax for 'newmtl'; expected 1 argument; got %d", len(lineTokens)-1)
			}

			matName := lineTokens[1]
			if _, exists := r.matNameToIndex[matName]; exists {
				return r.emitError(res.Path(), lineNum, "material '%s' already defined", matName)
			}

			r.matNameToIndex[matName] = int32(len(r.matNameToIndex))
		}
	}

	return nil
}

// Given an index for a face coord type (vertex, normal, tex) calculate the
// proper offset into the coord list. Wavefront format can also use negative
// indices to reference elements from the end of the coord list.
func selectFaceCoordIndex(indexToken string, coordListLen int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var vOffset int = 0
	if index < 0 {
		vOffset = coordListLen + int(index)
	} else {
		vOffset = int(index - 1)
	}
	if vOffset < 0 || vOffset >= coordListLen {
		return -1, fmt.Errorf("index out of bounds")
	}
	return vOffset, nil
}

// Parse a float scalar value.
func parseFloat32(lineTokens []string) (float32, error) {
	if len(lineTokens) < 2 {
		return 0, fmt.Errorf("unsupported syntax for '%s'; expected 1 argument; got %d", lineTokens[0], len(lineTokens)-1)
	}

	val, err := strconv.ParseFloat(lineTokens[1], 32)
	if err != nil {
		return 0, err
	}

	return float32(val), nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf("unsupported syntax for '%s'; expected 3 arguments; got %d", lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}

// Parse a Vec2 row.
func parseVec2(lineTokens []string) (types.Vec2, error) {
	if len(lineTokens) < 3 {
		return types.Vec2{}, fmt.Errorf("unsupported syntax for '%s'; expected 2 arguments; got %d", lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec2{}
	for tokIdx := 1; tokIdx <= 2; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}
