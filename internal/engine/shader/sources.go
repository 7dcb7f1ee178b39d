package shader

// MeshVertex transforms scene meshes to clip space.
const MeshVertex = `#version 410 core
layout (location = 0) in vec3 aPos;

uniform mat4 uViewProj;
uniform mat4 uModel;

out vec3 vWorldPos;

void main() {
	vec4 world = uModel * vec4(aPos, 1.0);
	vWorldPos = world.xyz;
	gl_Position = uViewProj * world;
}
`

// MeshFragment shades a mesh with one directional light, an ambient term
// and the material emissive colour. Normals come from screen-space
// derivatives so box geometry needs no normal attribute.
const MeshFragment = `#version 410 core
in vec3 vWorldPos;

uniform vec3 uColor;
uniform vec3 uEmissive;
uniform float uEmissiveIntensity;
uniform float uOpacity;
uniform vec3 uLightDir;
uniform float uAmbient;

out vec4 FragColor;

void main() {
	vec3 n = normalize(cross(dFdx(vWorldPos), dFdy(vWorldPos)));
	float diffuse = abs(dot(n, normalize(uLightDir)));
	vec3 lit = uColor * (uAmbient + diffuse) + uEmissive * uEmissiveIntensity;
	FragColor = vec4(min(lit, vec3(1.0)), uOpacity);
}
`

// OverlayVertex places a unit quad at a pixel rectangle.
const OverlayVertex = `#version 410 core
layout (location = 0) in vec2 aPos;

uniform mat4 uProj;
uniform vec4 uRect; // x, y, width, height in pixels

void main() {
	vec2 p = uRect.xy + aPos * uRect.zw;
	gl_Position = uProj * vec4(p, 0.0, 1.0);
}
`

// OverlayFragment fills with a flat colour.
const OverlayFragment = `#version 410 core
uniform vec4 uColor;
out vec4 FragColor;

void main() {
	FragColor = uColor;
}
`
